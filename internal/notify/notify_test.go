package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"go.uber.org/zap/zaptest"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Rendered
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg Rendered) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type recordingDispatcher struct {
	msgs []Message
	err  error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, msg Message) error {
	d.msgs = append(d.msgs, msg)
	return d.err
}

func TestRender(t *testing.T) {
	r, err := Render(Message{
		Channel:     ChannelEmail,
		Recipient:   "a@example.com",
		TemplateKey: TemplateBookingStatusChanged,
		Variables:   map[string]string{"name": "Sam", "reference": "FE-20260101-0001", "from": "quote_sent", "status": "confirmed"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Subject != "Booking FE-20260101-0001 is now confirmed" {
		t.Fatalf("unexpected subject %q", r.Subject)
	}
	if strings.Contains(r.Body, "Reason") {
		t.Fatalf("empty reason should be omitted: %q", r.Body)
	}

	if _, err := Render(Message{TemplateKey: "nope"}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestEveryTemplateRenders(t *testing.T) {
	for key := range templates {
		if _, err := Render(Message{TemplateKey: key, Variables: map[string]string{}}); err != nil {
			t.Fatalf("%s: %v", key, err)
		}
	}
}

func TestDelivererRoutesByChannel(t *testing.T) {
	email := &recordingSender{}
	sms := &recordingSender{err: errors.New("carrier down")}
	d := NewDeliverer(map[Channel]Sender{ChannelEmail: email, ChannelSMS: sms}, zaptest.NewLogger(t))

	ctx := context.Background()
	if err := d.Deliver(ctx, Message{Channel: ChannelEmail, TemplateKey: TemplatePaymentVerified}); err != nil {
		t.Fatalf("email: %v", err)
	}
	if err := d.Deliver(ctx, Message{Channel: ChannelSMS, TemplateKey: TemplatePaymentVerified}); err == nil {
		t.Fatal("expected sms failure to surface")
	}
	// No WhatsApp sender: falls back to the log sender.
	if err := d.Deliver(ctx, Message{Channel: ChannelWhatsApp, TemplateKey: TemplatePaymentVerified}); err != nil {
		t.Fatalf("whatsapp fallback: %v", err)
	}
	if email.count() != 1 || sms.count() != 1 {
		t.Fatalf("unexpected counts email=%d sms=%d", email.count(), sms.count())
	}
}

func TestNotifierFansOutAndSwallowsErrors(t *testing.T) {
	d := &recordingDispatcher{err: errors.New("redis down")}
	n := NewNotifier(d, zaptest.NewLogger(t))

	n.Notify(context.Background(), "FE-1", Contact{Name: "Sam", Email: "s@example.com", Phone: "+61400000000", WhatsApp: true},
		TemplateBookingCreated, map[string]string{"reference": "FE-1"})

	if len(d.msgs) != 3 {
		t.Fatalf("expected email, sms and whatsapp, got %d", len(d.msgs))
	}
	for _, m := range d.msgs {
		if m.CorrelationID != "FE-1" || m.Variables["name"] != "Sam" {
			t.Fatalf("unexpected message %+v", m)
		}
	}

	d.msgs = nil
	n.Notify(context.Background(), "FE-1", Contact{Name: "NoContact"}, TemplateBookingCreated, nil)
	if len(d.msgs) != 0 {
		t.Fatalf("expected nothing dispatched, got %d", len(d.msgs))
	}
}

func TestInProcessDispatcherDeliversAndDrains(t *testing.T) {
	sender := &recordingSender{}
	d := NewInProcessDispatcher(NewDeliverer(map[Channel]Sender{ChannelEmail: sender}, zaptest.NewLogger(t)), 10, 2, zaptest.NewLogger(t))

	for i := 0; i < 5; i++ {
		if err := d.Dispatch(context.Background(), Message{Channel: ChannelEmail, TemplateKey: TemplatePaymentSubmitted}); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}
	d.Close()

	if sender.count() != 5 {
		t.Fatalf("expected 5 deliveries, got %d", sender.count())
	}
}

func TestInProcessDispatchAfterClose(t *testing.T) {
	sender := &recordingSender{}
	d := NewInProcessDispatcher(NewDeliverer(map[Channel]Sender{ChannelEmail: sender}, zaptest.NewLogger(t)), 10, 1, zaptest.NewLogger(t))
	d.Close()
	d.Close()

	if err := d.Dispatch(context.Background(), Message{Channel: ChannelEmail, TemplateKey: TemplatePaymentSubmitted}); err != nil {
		t.Fatalf("dispatch after close: %v", err)
	}
	if sender.count() != 0 {
		t.Fatalf("expected nothing delivered after close, got %d", sender.count())
	}
}

func TestHandleDeliverTask(t *testing.T) {
	sender := &recordingSender{}
	d := NewDeliverer(map[Channel]Sender{ChannelEmail: sender}, zaptest.NewLogger(t))

	task, err := NewDeliverTask(Message{Channel: ChannelEmail, Recipient: "x@example.com", TemplateKey: TemplatePaymentRejected})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TypeDeliver {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	if err := d.HandleDeliverTask(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if sender.count() != 1 {
		t.Fatalf("expected delivery, got %d", sender.count())
	}

	bad := asynq.NewTask(TypeDeliver, []byte("{"))
	if err := d.HandleDeliverTask(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
