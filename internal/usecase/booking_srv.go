package usecase

import (
	"context"
	"fmt"
	"strings"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/data/repository"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/domain/access"
	"entertainer-booking/internal/domain/lifecycle"
	"entertainer-booking/internal/domain/quote"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/dto/response"
	"entertainer-booking/internal/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// startSweepBatch caps how many bookings one sweep moves to in_progress.
const startSweepBatch = 100

type BookingService interface {
	CreateBooking(ctx context.Context, actor access.Principal, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, actor access.Principal, bookingID string) (*response.BookingResponse, error)
	ListBookings(ctx context.Context, actor access.Principal, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	UpdateBookingDetails(ctx context.Context, actor access.Principal, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error)

	// State machine
	Transition(ctx context.Context, actor access.Principal, bookingID string, req *request.TransitionRequest) (*response.TransitionResponse, error)
	QuoteBooking(ctx context.Context, actor access.Principal, bookingID string, req *request.QuoteBookingRequest) (*response.BookingResponse, error)
	DecideCancellation(ctx context.Context, actor access.Principal, bookingID string, req *request.CancellationDecisionRequest) (*response.TransitionResponse, error)
	StartDueBookings(ctx context.Context) (int, error)

	AuditTrail(ctx context.Context, actor access.Principal, entityID string) ([]response.AuditEntryResponse, error)
}

type bookingService struct {
	*env
	log *zap.Logger
}

func NewBookingService(e *env) BookingService {
	return &bookingService{
		env: e,
		log: e.log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor access.Principal, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if err := access.Check(actor, access.OpCreateBooking, access.Ownership{}); err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Create booking", req); err != nil {
		return nil, err
	}

	performerID, err := parseID("performer_id", req.PerformerID)
	if err != nil {
		return nil, err
	}
	serviceID, err := parseID("service_id", req.ServiceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.checkLeadTime(req); err != nil {
		return nil, err
	}

	var booking *entity.Booking
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		priced, err := s.price(ctx, tx, performerID, serviceID, quote.Request{
			DurationHours: req.DurationHours,
			GuestCount:    req.GuestCount,
		})
		if err != nil {
			return err
		}

		reference, err := tx.Booking.NextReference(ctx, now.In(s.loc))
		if err != nil {
			return err
		}

		booking = &entity.Booking{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Reference:           reference,
			ClientID:            actor.UserID,
			PerformerID:         priced.performer.ID,
			ServiceID:           priced.service.ID,
			EventDate:           req.EventDate,
			DurationHours:       req.DurationHours,
			VenueAddress:        strings.TrimSpace(req.VenueAddress),
			GuestCount:          req.GuestCount,
			SpecialRequirements: req.SpecialRequirements,
			Status:              entity.BookingStatusPending,
			PaymentStatus:       entity.BookingPaymentUnpaid,
			Version:             1,
		}
		priced.quote.Apply(booking)

		if err := tx.Booking.Create(ctx, booking); err != nil {
			return err
		}

		return s.audit(ctx, tx, entity.AuditLog{
			EntityType: entity.AuditEntityBooking,
			EntityID:   booking.ID,
			ActorID:    actorRef(actor),
			Action:     "booking_created",
			ToState:    string(booking.Status),
			Metadata: map[string]any{
				"reference": booking.Reference,
				"total":     money(booking.TotalAmount),
				"deposit":   money(booking.DepositAmount),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("client_id", booking.ClientID.String()),
	)

	vars := map[string]string{
		"reference":  booking.Reference,
		"event_date": booking.EventDate.In(s.loc).Format("Mon 2 Jan 2006 15:04"),
		"total":      money(booking.TotalAmount),
		"deposit":    money(booking.DepositAmount),
	}
	s.notify(ctx, s.contact(ctx, booking.ClientID), notify.TemplateBookingCreated, vars)
	s.notify(ctx, s.performerContact(ctx, booking.PerformerID), notify.TemplateBookingCreated, vars)

	return response.NewBookingResponse(booking, s.currency()), nil
}

func (s *bookingService) checkLeadTime(req *request.CreateBookingRequest) error {
	if req.EventDate.IsZero() {
		return domain.NewValidation(domain.CodeValidationFailed, "event_date", "event date is required")
	}
	if req.EventDate.Before(s.now().Add(s.leadTime())) {
		return domain.NewValidation(domain.CodeEventTooSoon, "event_date",
			fmt.Sprintf("event must be at least %d hours from now", s.config.Booking.MinLeadHours))
	}
	return nil
}

// unpaid refuses re-pricing a booking that already has money applied to it.
func unpaid(b *entity.Booking) error {
	if b.PaymentStatus != entity.BookingPaymentUnpaid {
		return domain.NewState(domain.CodeInvalidTransition, "booking has verified payments and can no longer be re-priced")
	}
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor access.Principal, bookingID string) (*response.BookingResponse, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.loadVisible(ctx, s.repo, actor, id, access.OpViewBooking)
	if err != nil {
		return nil, err
	}
	return response.NewBookingResponse(booking, s.currency()), nil
}

// loadVisible reads a booking and checks actor may perform op on it. Missing
// bookings and bookings the actor has no tie to are both reported as not found
// to non-admins.
func (s *bookingService) loadVisible(ctx context.Context, repo *repository.Repository, actor access.Principal, id uuid.UUID, op access.Operation) (*entity.Booking, error) {
	booking, err := repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NewNotFound(domain.CodeBookingNotFound, "booking not found")
	}

	own, err := s.bookingOwnership(ctx, repo, booking)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, access.OpViewBooking, own) {
		return nil, domain.NewNotFound(domain.CodeBookingNotFound, "booking not found")
	}
	if err := access.Check(actor, op, own); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, actor access.Principal, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if err := validateRequest(s.log, "List bookings", req); err != nil {
		return nil, err
	}

	filter := repository.BookingFilter{
		CancellationReview: req.CancellationReview,
		Page:               repository.Page{Limit: req.Limit(), Offset: req.Offset()},
	}
	if req.Status != "" {
		filter.Statuses = []entity.BookingStatus{entity.BookingStatus(req.Status)}
	}

	switch {
	case access.Can(actor, access.OpListAllBookings, access.Ownership{}):
	case actor.Role == entity.RoleClient:
		filter.ClientID = actor.UserID
	case actor.Role == entity.RolePerformer:
		performer, err := s.repo.Performer.FindByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if performer == nil {
			return response.NewPaginatedResponse[response.BookingResponse](nil, req.Page, req.Limit(), 0), nil
		}
		filter.PerformerID = performer.ID
	default:
		return nil, domain.NewForbidden("not allowed to list bookings")
	}

	bookings, total, err := s.repo.Booking.List(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list bookings",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	items := make([]response.BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = *response.NewBookingResponse(b, s.currency())
	}
	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

func (s *bookingService) UpdateBookingDetails(ctx context.Context, actor access.Principal, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Update booking", req); err != nil {
		return nil, err
	}

	var booking *entity.Booking
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if _, err := s.loadVisible(ctx, tx, actor, id, access.OpEditBooking); err != nil {
			return err
		}
		booking, err = tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		switch booking.Status {
		case entity.BookingStatusPending, entity.BookingStatusQuoteRequested:
		default:
			return domain.NewState(domain.CodeInvalidTransition, "booking details can only change before a quote is sent")
		}
		if err := unpaid(booking); err != nil {
			return err
		}

		now := s.now()
		if req.EventDate != nil {
			if req.EventDate.Before(now.Add(s.leadTime())) {
				return domain.NewValidation(domain.CodeEventTooSoon, "event_date",
					fmt.Sprintf("event must be at least %d hours from now", s.config.Booking.MinLeadHours))
			}
			booking.EventDate = *req.EventDate
		}
		if req.DurationHours != nil {
			booking.DurationHours = *req.DurationHours
		}
		if req.VenueAddress != nil {
			booking.VenueAddress = strings.TrimSpace(*req.VenueAddress)
		}
		if req.GuestCount != nil {
			booking.GuestCount = *req.GuestCount
		}
		if req.SpecialRequirements != nil {
			booking.SpecialRequirements = *req.SpecialRequirements
		}

		priced, err := s.price(ctx, tx, booking.PerformerID, booking.ServiceID, quote.Request{
			DurationHours: booking.DurationHours,
			GuestCount:    booking.GuestCount,
		})
		if err != nil {
			return err
		}
		priced.quote.Apply(booking)
		booking.UpdatedAt = now
		booking.Version++

		if err := tx.Booking.Update(ctx, booking); err != nil {
			return err
		}
		return s.audit(ctx, tx, entity.AuditLog{
			EntityType: entity.AuditEntityBooking,
			EntityID:   booking.ID,
			ActorID:    actorRef(actor),
			Action:     "details_updated",
			FromState:  string(booking.Status),
			ToState:    string(booking.Status),
			Metadata:   map[string]any{"total": money(booking.TotalAmount)},
		})
	})
	if err != nil {
		return nil, err
	}

	return response.NewBookingResponse(booking, s.currency()), nil
}

func (s *bookingService) Transition(ctx context.Context, actor access.Principal, bookingID string, req *request.TransitionRequest) (*response.TransitionResponse, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Transition", req); err != nil {
		return nil, err
	}

	booking, out, err := s.transition(ctx, actor, id, entity.BookingStatus(req.Status), req.Reason, nil)
	if err != nil {
		s.log.Warn("Booking transition refused",
			zap.Error(err),
			zap.String("booking_id", bookingID),
			zap.String("to", req.Status),
			zap.String("actor_role", string(actor.Role)),
		)
		return nil, err
	}

	s.announce(ctx, booking, out)
	return transitionResponse(booking, out), nil
}

// transition runs one state-machine move under the booking row lock and audits
// it. prepare, when set, runs on the locked booking before the move.
func (s *bookingService) transition(
	ctx context.Context,
	actor access.Principal,
	id uuid.UUID,
	to entity.BookingStatus,
	reason string,
	prepare func(tx *repository.Repository, b *entity.Booking) error,
) (*entity.Booking, lifecycle.Outcome, error) {
	var (
		booking *entity.Booking
		out     lifecycle.Outcome
	)

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		booking, err = tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return domain.NewNotFound(domain.CodeBookingNotFound, "booking not found")
		}
		if actor.Role != access.RoleSystem {
			own, err := s.bookingOwnership(ctx, tx, booking)
			if err != nil {
				return err
			}
			if !access.Can(actor, access.OpViewBooking, own) {
				return domain.NewNotFound(domain.CodeBookingNotFound, "booking not found")
			}
		}

		if prepare != nil {
			if err := prepare(tx, booking); err != nil {
				return err
			}
		}

		out, err = lifecycle.Transition(lifecycle.Request{
			Booking:      booking,
			To:           to,
			Actor:        actor,
			Reason:       reason,
			Now:          s.now(),
			CancelNotice: s.cancelNotice(),
		})
		if err != nil {
			return err
		}

		if err := tx.Booking.Update(ctx, booking); err != nil {
			return err
		}
		return s.auditOutcome(ctx, tx, actor, booking, out)
	})
	return booking, out, err
}

func (e *env) auditOutcome(ctx context.Context, tx *repository.Repository, actor access.Principal, b *entity.Booking, out lifecycle.Outcome) error {
	action := "status_changed"
	if out.FlaggedForReview {
		action = "cancellation_flagged"
	}
	return e.audit(ctx, tx, entity.AuditLog{
		EntityType: entity.AuditEntityBooking,
		EntityID:   b.ID,
		ActorID:    actorRef(actor),
		Action:     action,
		FromState:  string(out.From),
		ToState:    string(out.To),
		Reason:     b.StatusReason,
	})
}

// announce notifies both parties about a committed transition.
func (e *env) announce(ctx context.Context, b *entity.Booking, out lifecycle.Outcome) {
	if out.FlaggedForReview {
		e.notify(ctx, e.contact(ctx, b.ClientID), notify.TemplateCancellationReview, map[string]string{
			"reference": b.Reference,
		})
		return
	}
	if !out.Changed() {
		return
	}

	vars := map[string]string{
		"reference": b.Reference,
		"from":      string(out.From),
		"status":    string(out.To),
		"reason":    b.StatusReason,
	}
	e.notify(ctx, e.contact(ctx, b.ClientID), notify.TemplateBookingStatusChanged, vars)
	e.notify(ctx, e.performerContact(ctx, b.PerformerID), notify.TemplateBookingStatusChanged, vars)
}

func transitionResponse(b *entity.Booking, out lifecycle.Outcome) *response.TransitionResponse {
	return &response.TransitionResponse{
		BookingID:        b.ID.String(),
		PreviousStatus:   string(out.From),
		NewStatus:        string(out.To),
		FlaggedForReview: out.FlaggedForReview,
	}
}

func (s *bookingService) QuoteBooking(ctx context.Context, actor access.Principal, bookingID string, req *request.QuoteBookingRequest) (*response.BookingResponse, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Quote booking", req); err != nil {
		return nil, err
	}
	if err := access.Check(actor, access.OpQuoteBooking, access.Ownership{}); err != nil {
		return nil, err
	}

	requote := func(tx *repository.Repository, b *entity.Booking) error {
		if err := unpaid(b); err != nil {
			return err
		}
		var q quote.Quote
		if req.BaseAmount != nil {
			performer, err := tx.Performer.FindByID(ctx, b.PerformerID)
			if err != nil {
				return err
			}
			rates, err := s.rates(ctx, tx, performer)
			if err != nil {
				return err
			}
			if q, err = quote.FromBase(*req.BaseAmount, rates); err != nil {
				return err
			}
		} else {
			priced, err := s.price(ctx, tx, b.PerformerID, b.ServiceID, quote.Request{
				DurationHours: b.DurationHours,
				GuestCount:    b.GuestCount,
			})
			if err != nil {
				return err
			}
			q = priced.quote
		}
		q.Apply(b)
		return nil
	}

	booking, out, err := s.transition(ctx, actor, id, entity.BookingStatusQuoteSent, req.Note, requote)
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking quoted",
		zap.String("booking_id", booking.ID.String()),
		zap.String("total", money(booking.TotalAmount)),
		zap.Bool("custom", req.BaseAmount != nil),
	)
	s.announce(ctx, booking, out)
	return response.NewBookingResponse(booking, s.currency()), nil
}

func (s *bookingService) DecideCancellation(ctx context.Context, actor access.Principal, bookingID string, req *request.CancellationDecisionRequest) (*response.TransitionResponse, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Cancellation decision", req); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, domain.NewForbidden("only admins decide flagged cancellations")
	}

	awaitingReview := func(tx *repository.Repository, b *entity.Booking) error {
		if !b.CancellationReview {
			return domain.NewState(domain.CodeInvalidTransition, "booking has no cancellation awaiting review")
		}
		return nil
	}

	if req.Approve {
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			reason = "late cancellation approved"
		}
		booking, out, err := s.transition(ctx, actor, id, entity.BookingStatusCancelled, reason, awaitingReview)
		if err != nil {
			return nil, err
		}
		s.announce(ctx, booking, out)
		return transitionResponse(booking, out), nil
	}

	var booking *entity.Booking
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		booking, err = tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return domain.NewNotFound(domain.CodeBookingNotFound, "booking not found")
		}
		if err := awaitingReview(tx, booking); err != nil {
			return err
		}

		booking.CancellationReview = false
		booking.CancellationRequestedBy = nil
		booking.CancellationRequestedAt = nil
		booking.StatusReason = strings.TrimSpace(req.Reason)
		booking.UpdatedAt = s.now()
		booking.Version++

		if err := tx.Booking.Update(ctx, booking); err != nil {
			return err
		}
		return s.audit(ctx, tx, entity.AuditLog{
			EntityType: entity.AuditEntityBooking,
			EntityID:   booking.ID,
			ActorID:    actorRef(actor),
			Action:     "cancellation_denied",
			FromState:  string(booking.Status),
			ToState:    string(booking.Status),
			Reason:     booking.StatusReason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, s.contact(ctx, booking.ClientID), notify.TemplateBookingStatusChanged, map[string]string{
		"reference": booking.Reference,
		"from":      string(booking.Status),
		"status":    string(booking.Status),
		"reason":    "cancellation request declined. " + booking.StatusReason,
	})
	out := lifecycle.Outcome{From: booking.Status, To: booking.Status}
	return transitionResponse(booking, out), nil
}

// StartDueBookings moves confirmed bookings whose event has begun to in_progress.
// Bookings that changed state since they were listed are skipped.
func (s *bookingService) StartDueBookings(ctx context.Context) (int, error) {
	ids, err := s.repo.Booking.FindDueToStart(ctx, s.now(), startSweepBatch)
	if err != nil {
		return 0, err
	}

	started := 0
	for _, id := range ids {
		booking, out, err := s.transition(ctx, access.System, id, entity.BookingStatusInProgress, "event started", nil)
		if err != nil {
			if domain.HasCode(err, domain.CodeInvalidTransition) {
				s.log.Debug("Skipping booking no longer due", zap.String("booking_id", id.String()), zap.Error(err))
				continue
			}
			s.log.Error("Failed to start booking", zap.Error(err), zap.String("booking_id", id.String()))
			return started, err
		}
		started++
		s.announce(ctx, booking, out)
	}

	if started > 0 {
		s.log.Info("Started due bookings", zap.Int("count", started))
	}
	return started, nil
}

func (s *bookingService) AuditTrail(ctx context.Context, actor access.Principal, entityID string) ([]response.AuditEntryResponse, error) {
	if err := access.Check(actor, access.OpViewAudit, access.Ownership{}); err != nil {
		return nil, err
	}
	id, err := parseID("entity_id", entityID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.Audit.ListByEntity(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]response.AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = response.NewAuditEntryResponse(e)
	}
	return out, nil
}
