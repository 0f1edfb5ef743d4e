package usecase

import (
	"time"

	"entertainer-booking/internal/data/repository"
	"entertainer-booking/internal/notify"
	"entertainer-booking/internal/storage"
	"entertainer-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Quote    QuoteService
	Booking  BookingService
	Payment  PaymentService
	Vetting  VettingService
	Catalog  CatalogService
	Settings SettingsService
}

// Option adjusts the shared service environment.
type Option func(*env)

// WithClock replaces time.Now, mostly for tests and replays.
func WithClock(now func() time.Time) Option {
	return func(e *env) { e.now = now }
}

func NewService(
	repo *repository.Repository,
	notifier *notify.Notifier,
	receipts storage.ReceiptStore,
	config *utils.Config,
	log *zap.Logger,
	opts ...Option,
) *Service {
	e := newEnv(repo, notifier, config, log)
	for _, opt := range opts {
		opt(e)
	}

	return &Service{
		Quote:    NewQuoteService(e),
		Booking:  NewBookingService(e),
		Payment:  NewPaymentService(e, receipts),
		Vetting:  NewVettingService(e),
		Catalog:  NewCatalogService(e),
		Settings: NewSettingsService(e),
	}
}
