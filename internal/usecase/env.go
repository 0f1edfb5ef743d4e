package usecase

import (
	"context"
	"fmt"
	"time"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/data/repository"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/domain/access"
	"entertainer-booking/internal/domain/quote"
	"entertainer-booking/internal/domain/reconcile"
	"entertainer-booking/internal/notify"
	"entertainer-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// env is what every service shares: storage, notifications, config and the clock.
type env struct {
	repo     *repository.Repository
	notifier *notify.Notifier
	config   *utils.Config
	log      *zap.Logger
	now      func() time.Time
	loc      *time.Location
}

func newEnv(repo *repository.Repository, notifier *notify.Notifier, config *utils.Config, log *zap.Logger) *env {
	loc, err := time.LoadLocation(config.Booking.Timezone)
	if err != nil {
		log.Warn("Unknown timezone, booking references use UTC",
			zap.Error(err),
			zap.String("timezone", config.Booking.Timezone),
		)
		loc = time.UTC
	}

	return &env{
		repo:     repo,
		notifier: notifier,
		config:   config,
		log:      log,
		now:      time.Now,
		loc:      loc,
	}
}

func (e *env) defaultRates() quote.Rates {
	return quote.Rates{
		DepositPercent:  decimal.NewFromFloat(e.config.Booking.DepositPercent),
		ReferralPercent: decimal.NewFromFloat(e.config.Booking.ReferralPercent),
	}
}

// rates resolves the percentages in force: saved platform settings, else the
// configured defaults, with the performer's referral override on top.
func (e *env) rates(ctx context.Context, repo *repository.Repository, performer *entity.Performer) (quote.Rates, error) {
	rates := e.defaultRates()

	settings, err := repo.Settings.Get(ctx)
	if err != nil {
		return quote.Rates{}, fmt.Errorf("load platform settings: %w", err)
	}
	if settings != nil {
		rates.DepositPercent = settings.DepositPercent
		rates.ReferralPercent = settings.ReferralPercent
	}

	if performer != nil && performer.ReferralPercent.Valid {
		rates.ReferralPercent = performer.ReferralPercent.Decimal
	}
	return rates, nil
}

func (e *env) tolerance() decimal.Decimal {
	if e.config.Booking.PaymentTolerance <= 0 {
		return reconcile.DefaultTolerance
	}
	return decimal.NewFromFloat(e.config.Booking.PaymentTolerance)
}

func (e *env) cancelNotice() time.Duration {
	return time.Duration(e.config.Booking.ClientCancelHours) * time.Hour
}

func (e *env) leadTime() time.Duration {
	return time.Duration(e.config.Booking.MinLeadHours) * time.Hour
}

func (e *env) currency() string {
	return e.config.Booking.Currency
}

func validateRequest(log *zap.Logger, op string, req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		log.Warn(op+" validation failed", zap.Any("errors", errs))
		return domain.NewInvalidRequest(errs)
	}
	return nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, domain.NewValidation(domain.CodeValidationFailed, field, "must be a valid UUID")
	}
	return id, nil
}

// actorRef is the audit actor for p; background jobs have none.
func actorRef(p access.Principal) *uuid.UUID {
	if p.UserID == uuid.Nil {
		return nil
	}
	id := p.UserID
	return &id
}

func (e *env) audit(ctx context.Context, tx *repository.Repository, entry entity.AuditLog) error {
	entry.ID = uuid.New()
	entry.CreatedAt = e.now()
	if err := tx.Audit.Append(ctx, &entry); err != nil {
		return fmt.Errorf("audit %s: %w", entry.Action, err)
	}
	return nil
}

func (e *env) bookingOwnership(ctx context.Context, repo *repository.Repository, b *entity.Booking) (access.Ownership, error) {
	own := access.Ownership{ClientID: b.ClientID}
	performer, err := repo.Performer.FindByID(ctx, b.PerformerID)
	if err != nil {
		return own, fmt.Errorf("find performer %s: %w", b.PerformerID, err)
	}
	if performer != nil {
		own.PerformerUserID = performer.UserID
	}
	return own, nil
}

func correlationID(ctx context.Context) string {
	if id := utils.GetRequestIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func (e *env) contact(ctx context.Context, userID uuid.UUID) notify.Contact {
	user, err := e.repo.User.FindByID(ctx, userID)
	if err != nil || user == nil {
		e.log.Warn("No contact for notification recipient",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return notify.Contact{}
	}
	return notify.Contact{
		Name:     user.Name,
		Email:    user.Email,
		Phone:    user.Phone,
		WhatsApp: user.WhatsAppOptIn,
	}
}

func (e *env) performerContact(ctx context.Context, performerID uuid.UUID) notify.Contact {
	performer, err := e.repo.Performer.FindByID(ctx, performerID)
	if err != nil || performer == nil {
		e.log.Warn("No performer for notification",
			zap.Error(err),
			zap.String("performer_id", performerID.String()),
		)
		return notify.Contact{}
	}
	c := e.contact(ctx, performer.UserID)
	if c.Name == "" {
		c.Name = performer.StageName
	}
	return c
}

func (e *env) notify(ctx context.Context, to notify.Contact, templateKey string, vars map[string]string) {
	if e.notifier == nil || to == (notify.Contact{}) {
		return
	}
	e.notifier.Notify(ctx, correlationID(ctx), to, templateKey, vars)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
