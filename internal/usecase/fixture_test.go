package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/data/memory"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/domain/access"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/dto/response"
	"entertainer-booking/internal/notify"
	"entertainer-booking/internal/storage"
	"entertainer-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, msg notify.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, msg)
	return nil
}

func (d *recordingDispatcher) count(templateKey string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, m := range d.msgs {
		if templateKey == "" || m.TemplateKey == templateKey {
			n++
		}
	}
	return n
}

type fakeReceipts struct{}

func (fakeReceipts) PresignUpload(ctx context.Context, bookingID uuid.UUID, contentType string) (*storage.Upload, error) {
	key, err := storage.ReceiptKey(bookingID, contentType)
	if err != nil {
		return nil, err
	}
	return &storage.Upload{Ref: "s3://receipts/" + key, URL: "https://example.test/" + key, Method: "PUT"}, nil
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	disp  *recordingDispatcher
	svc   *Service
	now   time.Time

	client        access.Principal
	otherClient   access.Principal
	admin         access.Principal
	performerUser access.Principal

	performer entity.Performer
	service   entity.PerformerService
}

func testConfig() *utils.Config {
	return &utils.Config{
		Booking: utils.BookingConfig{
			DepositPercent:    50,
			ReferralPercent:   10,
			MinLeadHours:      24,
			ClientCancelHours: 24,
			PaymentTolerance:  0.01,
			Currency:          "AUD",
			Timezone:          "UTC",
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memory.New(log),
		disp:  &recordingDispatcher{},
		now:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	f.client = f.putUser("Casey Client", "casey@example.com", "+61400000001", entity.RoleClient)
	f.otherClient = f.putUser("Olive Other", "olive@example.com", "", entity.RoleClient)
	f.admin = f.putUser("Ada Admin", "ada@example.com", "", entity.RoleAdmin)
	f.performerUser = f.putUser("Nova Performer", "nova@example.com", "", entity.RolePerformer)

	f.performer = entity.Performer{UserID: f.performerUser.UserID, StageName: "DJ Nova", Category: "dj", Active: true}
	f.performer.ID = uuid.New()
	f.store.PutPerformer(f.performer)

	f.service = entity.PerformerService{
		PerformerID:      f.performer.ID,
		Name:             "Club set",
		BaseRate:         decimal.NewFromInt(150),
		RateType:         entity.RateTypePerHour,
		MinDurationHours: decimal.NewFromInt(1),
		Active:           true,
	}
	f.service.ID = uuid.New()
	f.store.PutService(f.service)

	f.svc = NewService(
		f.store.Repository(),
		notify.NewNotifier(f.disp, log),
		fakeReceipts{},
		testConfig(),
		log,
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func (f *fixture) putUser(name, email, phone string, role entity.Role) access.Principal {
	u := entity.User{Name: name, Email: email, Phone: phone, Role: role}
	u.ID = uuid.New()
	f.store.PutUser(u)
	return access.Principal{UserID: u.ID, Role: role}
}

func (f *fixture) createBooking() *response.BookingResponse {
	f.t.Helper()
	b, err := f.svc.Booking.CreateBooking(f.ctx, f.client, &request.CreateBookingRequest{
		PerformerID:   f.performer.ID.String(),
		ServiceID:     f.service.ID.String(),
		EventDate:     f.now.Add(72 * time.Hour),
		DurationHours: decimal.NewFromInt(2),
		VenueAddress:  "12 Harbour St, Sydney",
		GuestCount:    80,
	})
	if err != nil {
		f.t.Fatalf("create booking: %v", err)
	}
	return b
}

// quotedBooking returns a booking sitting in quote_sent.
func (f *fixture) quotedBooking() *response.BookingResponse {
	f.t.Helper()
	b := f.createBooking()
	quoted, err := f.svc.Booking.QuoteBooking(f.ctx, f.admin, b.ID, &request.QuoteBookingRequest{})
	if err != nil {
		f.t.Fatalf("quote booking: %v", err)
	}
	if quoted.Status != string(entity.BookingStatusQuoteSent) {
		f.t.Fatalf("expected quote_sent, got %s", quoted.Status)
	}
	return quoted
}

func (f *fixture) submit(bookingID string, amount string) *response.PaymentResponse {
	f.t.Helper()
	p, err := f.svc.Payment.SubmitPayment(f.ctx, f.client, bookingID, paymentRequest(amount))
	if err != nil {
		f.t.Fatalf("submit payment: %v", err)
	}
	return p
}

func paymentRequest(amount string) *request.SubmitPaymentRequest {
	return &request.SubmitPaymentRequest{
		Amount:       decimal.RequireFromString(amount),
		Method:       string(entity.PaymentMethodPayID),
		ReceiptRef:   "s3://receipts/r1.pdf",
		PayerName:    "Casey Client",
		PayerContact: "+61400000001",
	}
}

func (f *fixture) booking(id string) *entity.Booking {
	f.t.Helper()
	b, err := f.store.Repository().Booking.FindByID(f.ctx, uuid.MustParse(id))
	if err != nil || b == nil {
		f.t.Fatalf("re-read booking %s: %v", id, err)
	}
	return b
}

func requireCode(t *testing.T, err error, code domain.Code) {
	t.Helper()
	if !domain.HasCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func requireKind(t *testing.T, err error, kind domain.Kind) {
	t.Helper()
	de, ok := domain.AsError(err)
	if !ok || de.Kind != kind {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}
