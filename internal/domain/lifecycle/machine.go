// Package lifecycle is the booking state machine: which status moves exist,
// who may trigger them, and the guards each one checks.
package lifecycle

import (
	"strings"
	"time"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/domain/access"
)

// DefaultCancelNotice is the minimum notice a client needs to cancel without admin review.
const DefaultCancelNotice = 24 * time.Hour

type guard func(req Request) error

type edge struct {
	op    access.Operation
	guard guard
}

var transitions = map[entity.BookingStatus]map[entity.BookingStatus]edge{
	entity.BookingStatusPending: {
		entity.BookingStatusQuoteRequested: {op: access.OpRequestQuote},
		entity.BookingStatusQuoteSent:      {op: access.OpQuoteBooking, guard: quoted},
		entity.BookingStatusRejected:       {op: access.OpRejectBooking, guard: reasonGiven},
	},
	entity.BookingStatusQuoteRequested: {
		entity.BookingStatusQuoteSent: {op: access.OpQuoteBooking, guard: quoted},
		entity.BookingStatusRejected:  {op: access.OpRejectBooking, guard: reasonGiven},
	},
	entity.BookingStatusQuoteSent: {
		entity.BookingStatusConfirmed: {op: access.OpConfirmBooking, guard: depositVerified},
	},
	entity.BookingStatusConfirmed: {
		entity.BookingStatusInProgress: {op: access.OpStartBooking, guard: eventStarted},
	},
	entity.BookingStatusInProgress: {
		entity.BookingStatusCompleted: {op: access.OpCompleteBooking},
	},
}

// Request describes one attempted move.
type Request struct {
	Booking *entity.Booking
	To      entity.BookingStatus
	Actor   access.Principal
	Reason  string
	Now     time.Time
	// CancelNotice overrides DefaultCancelNotice when positive.
	CancelNotice time.Duration
}

// Outcome is what Transition decided. When FlaggedForReview is set the status did not change.
type Outcome struct {
	From             entity.BookingStatus
	To               entity.BookingStatus
	FlaggedForReview bool
}

// Changed reports whether the booking status moved.
func (o Outcome) Changed() bool { return o.From != o.To }

// Transition validates the move and applies it to req.Booking. On error the booking is untouched.
func Transition(req Request) (Outcome, error) {
	b := req.Booking
	from := b.Status
	out := Outcome{From: from, To: from}

	if from.Terminal() || from == req.To {
		return out, domain.InvalidTransition(string(from), string(req.To))
	}

	if req.To == entity.BookingStatusCancelled {
		return cancel(req)
	}

	e, ok := transitions[from][req.To]
	if !ok {
		return out, domain.InvalidTransition(string(from), string(req.To))
	}
	if err := access.Check(req.Actor, e.op, access.Ownership{ClientID: b.ClientID}); err != nil {
		return out, err
	}
	if e.guard != nil {
		if err := e.guard(req); err != nil {
			return out, err
		}
	}

	apply(b, req.To, strings.TrimSpace(req.Reason), req.Now)
	out.To = req.To
	return out, nil
}

// Allowed lists the statuses reachable from s, ignoring guards and actors.
func Allowed(s entity.BookingStatus) []entity.BookingStatus {
	if s.Terminal() {
		return nil
	}
	next := make([]entity.BookingStatus, 0, len(transitions[s])+1)
	for _, to := range order {
		if _, ok := transitions[s][to]; ok {
			next = append(next, to)
		}
	}
	return append(next, entity.BookingStatusCancelled)
}

var order = []entity.BookingStatus{
	entity.BookingStatusQuoteRequested,
	entity.BookingStatusQuoteSent,
	entity.BookingStatusConfirmed,
	entity.BookingStatusInProgress,
	entity.BookingStatusCompleted,
	entity.BookingStatusRejected,
}

func cancel(req Request) (Outcome, error) {
	b := req.Booking
	out := Outcome{From: b.Status, To: b.Status}

	if err := access.Check(req.Actor, access.OpCancelBooking, access.Ownership{ClientID: b.ClientID}); err != nil {
		return out, err
	}
	reason := strings.TrimSpace(req.Reason)

	if !req.Actor.IsAdmin() {
		notice := req.CancelNotice
		if notice <= 0 {
			notice = DefaultCancelNotice
		}
		if b.EventDate.Sub(req.Now) < notice {
			if b.CancellationReview {
				return out, domain.NewState(domain.CodeInvalidTransition, "cancellation is already awaiting admin review")
			}
			actor := req.Actor.UserID
			now := req.Now
			b.CancellationReview = true
			b.CancellationRequestedBy = &actor
			b.CancellationRequestedAt = &now
			b.StatusReason = reason
			b.UpdatedAt = req.Now
			b.Version++
			out.FlaggedForReview = true
			return out, nil
		}
	}

	b.CancellationReview = false
	apply(b, entity.BookingStatusCancelled, reason, req.Now)
	out.To = entity.BookingStatusCancelled
	return out, nil
}

func apply(b *entity.Booking, to entity.BookingStatus, reason string, now time.Time) {
	b.Status = to
	b.StatusReason = reason
	b.UpdatedAt = now
	b.Version++
}

func reasonGiven(req Request) error {
	if strings.TrimSpace(req.Reason) == "" {
		return domain.NewValidation(domain.CodeReasonRequired, "reason", "a reason is required to reject a booking")
	}
	return nil
}

func quoted(req Request) error {
	if !req.Booking.TotalAmount.IsPositive() {
		return domain.NewState(domain.CodeInvalidTransition, "booking has no computed quote")
	}
	return nil
}

func depositVerified(req Request) error {
	switch req.Booking.PaymentStatus {
	case entity.BookingPaymentDepositPaid, entity.BookingPaymentFullyPaid:
		return nil
	}
	return domain.NewState(domain.CodeInvalidTransition, "deposit has not been verified")
}

func eventStarted(req Request) error {
	if req.Booking.EventDate.After(req.Now) {
		return domain.NewState(domain.CodeInvalidTransition, "event has not started yet")
	}
	return nil
}
