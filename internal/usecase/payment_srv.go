package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/data/repository"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/domain/access"
	"entertainer-booking/internal/domain/lifecycle"
	"entertainer-booking/internal/domain/reconcile"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/dto/response"
	"entertainer-booking/internal/notify"
	"entertainer-booking/internal/storage"
	"entertainer-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService interface {
	RequestReceiptUpload(ctx context.Context, actor access.Principal, bookingID string, req *request.ReceiptUploadRequest) (*response.UploadResponse, error)
	SubmitPayment(ctx context.Context, actor access.Principal, bookingID string, req *request.SubmitPaymentRequest) (*response.PaymentResponse, error)
	ListForBooking(ctx context.Context, actor access.Principal, bookingID string) ([]*response.PaymentResponse, error)

	// Admin endpoints
	VerifyPayment(ctx context.Context, actor access.Principal, paymentID string, req *request.VerifyPaymentRequest) (*response.VerificationResponse, error)
	ResolvePaymentFlag(ctx context.Context, actor access.Principal, paymentID string, req *request.ResolvePaymentRequest) (*response.PaymentResponse, error)
	Queue(ctx context.Context, actor access.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error)
	Flagged(ctx context.Context, actor access.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error)
}

type paymentService struct {
	*env
	receipts storage.ReceiptStore
	log      *zap.Logger
}

func NewPaymentService(e *env, receipts storage.ReceiptStore) PaymentService {
	return &paymentService{
		env:      e,
		receipts: receipts,
		log:      e.log.With(zap.String("service", "payment")),
	}
}

// lockPayable locks the booking and checks actor may pay for it.
func (s *paymentService) lockPayable(ctx context.Context, tx *repository.Repository, actor access.Principal, id uuid.UUID) (*entity.Booking, error) {
	booking, err := tx.Booking.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NewNotFound(domain.CodeBookingNotFound, "booking not found")
	}

	own, err := s.bookingOwnership(ctx, tx, booking)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, access.OpViewBooking, own) {
		return nil, domain.NewNotFound(domain.CodeBookingNotFound, "booking not found")
	}
	if err := access.Check(actor, access.OpSubmitPayment, own); err != nil {
		return nil, err
	}

	if booking.Status.Terminal() {
		return nil, domain.NewState(domain.CodeBookingNotPayable, "booking is "+string(booking.Status)+" and no longer accepts payments")
	}
	switch booking.Status {
	case entity.BookingStatusPending, entity.BookingStatusQuoteRequested:
		return nil, domain.NewState(domain.CodeBookingNotPayable, "booking has not been quoted yet")
	}
	if booking.PaymentStatus == entity.BookingPaymentFullyPaid {
		return nil, domain.NewState(domain.CodeBookingNotPayable, "booking is already fully paid")
	}
	return booking, nil
}

func (s *paymentService) RequestReceiptUpload(ctx context.Context, actor access.Principal, bookingID string, req *request.ReceiptUploadRequest) (*response.UploadResponse, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Receipt upload", req); err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		_, err := s.lockPayable(ctx, tx, actor, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	upload, err := s.receipts.PresignUpload(ctx, id, req.ContentType)
	if err != nil {
		return nil, err
	}

	return &response.UploadResponse{
		ReceiptRef: upload.Ref,
		UploadURL:  upload.URL,
		Method:     upload.Method,
		ExpiresAt:  upload.ExpiresAt,
	}, nil
}

func (s *paymentService) SubmitPayment(ctx context.Context, actor access.Principal, bookingID string, req *request.SubmitPaymentRequest) (*response.PaymentResponse, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Submit payment", req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, domain.NewValidation(domain.CodeValidationFailed, "amount", "amount must be greater than zero")
	}

	var (
		booking *entity.Booking
		payment *entity.Payment
	)
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		booking, err = s.lockPayable(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		pending, err := tx.Payment.HasPending(ctx, booking.ID)
		if err != nil {
			return err
		}
		if pending {
			return duplicatePending()
		}

		now := s.now()
		payment = &entity.Payment{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			BookingID:    booking.ID,
			Amount:       req.Amount.Round(2),
			Method:       entity.PaymentMethod(req.Method),
			PayerName:    strings.TrimSpace(req.PayerName),
			PayerContact: strings.TrimSpace(req.PayerContact),
			ReceiptRef:   strings.TrimSpace(req.ReceiptRef),
			Status:       entity.PaymentStatusPending,
		}
		if err := tx.Payment.Create(ctx, payment); err != nil {
			if errors.Is(err, repository.ErrDuplicatePending) {
				return duplicatePending()
			}
			return err
		}

		return s.audit(ctx, tx, entity.AuditLog{
			EntityType: entity.AuditEntityPayment,
			EntityID:   payment.ID,
			ActorID:    actorRef(actor),
			Action:     "payment_submitted",
			ToState:    string(payment.Status),
			Metadata: map[string]any{
				"booking_id": booking.ID.String(),
				"amount":     money(payment.Amount),
				"method":     string(payment.Method),
			},
		})
	})
	if err != nil {
		if domain.HasCode(err, domain.CodeDuplicatePendingPayment) {
			s.log.Warn("Duplicate pending payment refused", zap.String("booking_id", bookingID))
		}
		return nil, err
	}

	s.log.Info("Payment submitted",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.String("amount", money(payment.Amount)),
		zap.String("payer_contact", utils.MaskContact(payment.PayerContact)),
	)

	s.notify(ctx, s.contact(ctx, booking.ClientID), notify.TemplatePaymentSubmitted, map[string]string{
		"reference": booking.Reference,
		"amount":    money(payment.Amount),
	})

	return response.NewPaymentResponse(payment), nil
}

func duplicatePending() error {
	return domain.NewConflict(domain.CodeDuplicatePendingPayment, "a payment for this booking is already awaiting verification")
}

func (s *paymentService) ListForBooking(ctx context.Context, actor access.Principal, bookingID string) ([]*response.PaymentResponse, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NewNotFound(domain.CodeBookingNotFound, "booking not found")
	}
	own, err := s.bookingOwnership(ctx, s.repo, booking)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, access.OpViewPayments, own) {
		return nil, domain.NewNotFound(domain.CodeBookingNotFound, "booking not found")
	}

	payments, err := s.repo.Payment.ListByBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]*response.PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = response.NewPaymentResponse(p)
	}
	return out, nil
}

// VerifyPayment records an admin's decision on a submitted payment. A payment
// that was already decided is returned as recorded, with no side effects.
func (s *paymentService) VerifyPayment(ctx context.Context, actor access.Principal, paymentID string, req *request.VerifyPaymentRequest) (*response.VerificationResponse, error) {
	if err := access.Check(actor, access.OpVerifyPayment, access.Ownership{}); err != nil {
		return nil, err
	}
	id, err := parseID("id", paymentID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Verify payment", req); err != nil {
		return nil, err
	}

	var (
		payment *entity.Payment
		booking *entity.Booking
		match   reconcile.Match
		out     lifecycle.Outcome
		decided bool
	)
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		payment, err = tx.Payment.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.NewNotFound(domain.CodePaymentNotFound, "payment not found")
		}
		booking, err = tx.Booking.FindByIDForUpdate(ctx, payment.BookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return fmt.Errorf("payment %s references missing booking %s", payment.ID, payment.BookingID)
		}

		if payment.Decided() {
			decided = true
			_, expected := reconcile.Expected(booking)
			match = reconcile.Match{Kind: payment.Kind, Expected: expected, PaymentStatus: booking.PaymentStatus}
			return nil
		}

		now := s.now()
		verifier := actor.UserID
		payment.VerifiedBy = &verifier
		payment.VerifiedAt = &now
		payment.Notes = strings.TrimSpace(req.Notes)
		payment.UpdatedAt = now
		out = lifecycle.Outcome{From: booking.Status, To: booking.Status}

		if req.Outcome == string(entity.PaymentStatusRejected) {
			payment.Status = entity.PaymentStatusRejected
			if err := tx.Payment.Update(ctx, payment); err != nil {
				return err
			}
			return s.audit(ctx, tx, entity.AuditLog{
				EntityType: entity.AuditEntityPayment,
				EntityID:   payment.ID,
				ActorID:    actorRef(actor),
				Action:     "payment_rejected",
				FromState:  string(entity.PaymentStatusPending),
				ToState:    string(payment.Status),
				Reason:     payment.Notes,
			})
		}

		payment.Status = entity.PaymentStatusVerified
		match = reconcile.Amount(booking, payment.Amount, s.tolerance())
		payment.Kind = match.Kind
		if !match.Matched {
			payment.ReviewFlag = entity.ReviewFlagAmountMismatch
		}
		if err := tx.Payment.Update(ctx, payment); err != nil {
			return err
		}
		if err := s.audit(ctx, tx, entity.AuditLog{
			EntityType: entity.AuditEntityPayment,
			EntityID:   payment.ID,
			ActorID:    actorRef(actor),
			Action:     "payment_verified",
			FromState:  string(entity.PaymentStatusPending),
			ToState:    string(payment.Status),
			Reason:     payment.Notes,
			Metadata: map[string]any{
				"amount":   money(payment.Amount),
				"expected": money(match.Expected),
				"kind":     string(match.Kind),
				"flag":     string(payment.ReviewFlag),
			},
		}); err != nil {
			return err
		}

		if !match.Matched {
			return nil
		}
		return s.settle(ctx, tx, actor, booking, match, &out)
	})
	if err != nil {
		return nil, err
	}

	resp := &response.VerificationResponse{
		Payment:        response.NewPaymentResponse(payment),
		BookingStatus:  string(booking.Status),
		PaymentStatus:  string(booking.PaymentStatus),
		Expected:       match.Expected,
		AlreadyDecided: decided,
	}
	if payment.ReviewFlag == entity.ReviewFlagAmountMismatch {
		resp.Code = string(domain.CodeAmountMismatch)
	}
	if decided {
		s.log.Info("Payment already decided", zap.String("payment_id", paymentID), zap.String("status", string(payment.Status)))
		return resp, nil
	}

	s.log.Info("Payment verification recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.String("status", string(payment.Status)),
		zap.String("kind", string(payment.Kind)),
		zap.String("booking_payment_status", string(booking.PaymentStatus)),
	)
	s.announcePayment(ctx, booking, payment, match)
	s.announce(ctx, booking, out)
	return resp, nil
}

// settle applies a matched payment to its booking and confirms a quoted booking
// once the deposit is in.
func (s *paymentService) settle(ctx context.Context, tx *repository.Repository, actor access.Principal, booking *entity.Booking, match reconcile.Match, out *lifecycle.Outcome) error {
	previous := booking.PaymentStatus
	booking.PaymentStatus = match.PaymentStatus
	booking.UpdatedAt = s.now()
	booking.Version++

	if booking.Status == entity.BookingStatusQuoteSent {
		o, err := lifecycle.Transition(lifecycle.Request{
			Booking: booking,
			To:      entity.BookingStatusConfirmed,
			Actor:   actor,
			Reason:  string(match.Kind) + " payment verified",
			Now:     s.now(),
		})
		if err != nil {
			return err
		}
		*out = o
	}

	if err := tx.Booking.Update(ctx, booking); err != nil {
		return err
	}
	if err := s.audit(ctx, tx, entity.AuditLog{
		EntityType: entity.AuditEntityBooking,
		EntityID:   booking.ID,
		ActorID:    actorRef(actor),
		Action:     "payment_status_changed",
		FromState:  string(previous),
		ToState:    string(booking.PaymentStatus),
	}); err != nil {
		return err
	}
	if out.Changed() {
		return s.auditOutcome(ctx, tx, actor, booking, *out)
	}
	return nil
}

func (s *paymentService) announcePayment(ctx context.Context, booking *entity.Booking, payment *entity.Payment, match reconcile.Match) {
	vars := map[string]string{
		"reference":      booking.Reference,
		"amount":         money(payment.Amount),
		"payment_status": string(booking.PaymentStatus),
		"expected":       money(match.Expected),
		"notes":          payment.Notes,
	}

	to := s.contact(ctx, booking.ClientID)
	switch {
	case payment.Status == entity.PaymentStatusRejected:
		s.notify(ctx, to, notify.TemplatePaymentRejected, vars)
	case payment.ReviewFlag == entity.ReviewFlagAmountMismatch:
		s.notify(ctx, to, notify.TemplatePaymentFlagged, vars)
	default:
		s.notify(ctx, to, notify.TemplatePaymentVerified, vars)
	}
}

func (s *paymentService) ResolvePaymentFlag(ctx context.Context, actor access.Principal, paymentID string, req *request.ResolvePaymentRequest) (*response.PaymentResponse, error) {
	if err := access.Check(actor, access.OpVerifyPayment, access.Ownership{}); err != nil {
		return nil, err
	}
	id, err := parseID("id", paymentID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Resolve payment", req); err != nil {
		return nil, err
	}

	var payment *entity.Payment
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		payment, err = tx.Payment.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.NewNotFound(domain.CodePaymentNotFound, "payment not found")
		}
		if payment.ReviewFlag == entity.ReviewFlagNone {
			return domain.NewState(domain.CodeAlreadyReviewed, "payment has no open review flag")
		}

		now := s.now()
		resolver := actor.UserID
		flag := payment.ReviewFlag
		payment.ReviewFlag = entity.ReviewFlagNone
		payment.ResolvedBy = &resolver
		payment.ResolvedAt = &now
		payment.ResolutionNotes = strings.TrimSpace(req.Notes)
		payment.UpdatedAt = now

		if err := tx.Payment.Update(ctx, payment); err != nil {
			return err
		}
		return s.audit(ctx, tx, entity.AuditLog{
			EntityType: entity.AuditEntityPayment,
			EntityID:   payment.ID,
			ActorID:    actorRef(actor),
			Action:     "payment_flag_resolved",
			FromState:  string(flag),
			Reason:     payment.ResolutionNotes,
		})
	})
	if err != nil {
		return nil, err
	}

	return response.NewPaymentResponse(payment), nil
}

func (s *paymentService) Queue(ctx context.Context, actor access.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error) {
	return s.list(ctx, actor, req, repository.PaymentFilter{Status: entity.PaymentStatusPending})
}

func (s *paymentService) Flagged(ctx context.Context, actor access.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error) {
	return s.list(ctx, actor, req, repository.PaymentFilter{Flagged: true})
}

func (s *paymentService) list(ctx context.Context, actor access.Principal, req *request.PaginatedRequest, filter repository.PaymentFilter) (*response.PaginatedResponse[response.PaymentResponse], error) {
	if err := access.Check(actor, access.OpVerifyPayment, access.Ownership{}); err != nil {
		return nil, err
	}
	filter.Page = repository.Page{Limit: req.Limit(), Offset: req.Offset()}

	payments, total, err := s.repo.Payment.List(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list payments", zap.Error(err), zap.Bool("flagged", filter.Flagged))
		return nil, fmt.Errorf("list payments: %w", err)
	}

	items := make([]response.PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = *response.NewPaymentResponse(p)
	}
	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}
