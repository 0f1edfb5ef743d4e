// Package notify delivers booking notifications by email, SMS and WhatsApp.
// Dispatch is fire-and-forget: callers never wait on delivery.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Message is the outbound call contract.
type Message struct {
	Channel       Channel           `json:"channel"`
	Recipient     string            `json:"recipient"`
	TemplateKey   string            `json:"template_key"`
	Variables     map[string]string `json:"variables"`
	CorrelationID string            `json:"correlation_id"`
}

// Dispatcher hands a message to the delivery pipeline without waiting for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// Rendered is a message with its template applied.
type Rendered struct {
	Channel       Channel
	Recipient     string
	Subject       string
	Body          string
	CorrelationID string
}

// Sender delivers rendered messages on one channel.
type Sender interface {
	Send(ctx context.Context, msg Rendered) error
}

// Deliverer renders a message and routes it to the sender for its channel.
type Deliverer struct {
	senders  map[Channel]Sender
	fallback Sender
	log      *zap.Logger
}

func NewDeliverer(senders map[Channel]Sender, log *zap.Logger) *Deliverer {
	log = log.With(zap.String("component", "notify"))
	return &Deliverer{
		senders:  senders,
		fallback: NewLogSender(log),
		log:      log,
	}
}

func (d *Deliverer) Deliver(ctx context.Context, msg Message) error {
	rendered, err := Render(msg)
	if err != nil {
		return err
	}

	sender, ok := d.senders[msg.Channel]
	if !ok || sender == nil {
		sender = d.fallback
	}

	if err := sender.Send(ctx, rendered); err != nil {
		d.log.Error("Notification delivery failed",
			zap.Error(err),
			zap.String("channel", string(msg.Channel)),
			zap.String("template", msg.TemplateKey),
			zap.String("correlation_id", msg.CorrelationID),
		)
		return fmt.Errorf("deliver %s via %s: %w", msg.TemplateKey, msg.Channel, err)
	}
	return nil
}

// Contact is where a user can be reached.
type Contact struct {
	Name     string
	Email    string
	Phone    string
	WhatsApp bool
}

// Notifier fans a template out to every channel a contact can receive and
// swallows failures after logging them.
type Notifier struct {
	dispatcher Dispatcher
	log        *zap.Logger
}

func NewNotifier(dispatcher Dispatcher, log *zap.Logger) *Notifier {
	return &Notifier{
		dispatcher: dispatcher,
		log:        log.With(zap.String("component", "notifier")),
	}
}

func (n *Notifier) Notify(ctx context.Context, correlationID string, to Contact, templateKey string, vars map[string]string) {
	vars = withName(vars, to.Name)

	var msgs []Message
	if to.Email != "" {
		msgs = append(msgs, Message{Channel: ChannelEmail, Recipient: to.Email})
	}
	if to.Phone != "" {
		msgs = append(msgs, Message{Channel: ChannelSMS, Recipient: to.Phone})
		if to.WhatsApp {
			msgs = append(msgs, Message{Channel: ChannelWhatsApp, Recipient: to.Phone})
		}
	}
	if len(msgs) == 0 {
		n.log.Warn("Contact has no reachable channel",
			zap.String("template", templateKey),
			zap.String("correlation_id", correlationID),
		)
		return
	}

	for _, msg := range msgs {
		msg.TemplateKey = templateKey
		msg.Variables = vars
		msg.CorrelationID = correlationID
		if err := n.dispatcher.Dispatch(ctx, msg); err != nil {
			n.log.Error("Failed to dispatch notification",
				zap.Error(err),
				zap.String("channel", string(msg.Channel)),
				zap.String("template", templateKey),
				zap.String("correlation_id", correlationID),
			)
		}
	}
}

func withName(vars map[string]string, name string) map[string]string {
	out := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		out[k] = v
	}
	if _, ok := out["name"]; !ok {
		out["name"] = name
	}
	return out
}
