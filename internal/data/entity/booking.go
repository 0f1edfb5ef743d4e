package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending        BookingStatus = "pending"
	BookingStatusQuoteRequested BookingStatus = "quote_requested"
	BookingStatusQuoteSent      BookingStatus = "quote_sent"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusInProgress     BookingStatus = "in_progress"
	BookingStatusCompleted      BookingStatus = "completed"
	BookingStatusCancelled      BookingStatus = "cancelled"
	BookingStatusRejected       BookingStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusRejected:
		return true
	}
	return false
}

type BookingPaymentStatus string

const (
	BookingPaymentUnpaid      BookingPaymentStatus = "unpaid"
	BookingPaymentDepositPaid BookingPaymentStatus = "deposit_paid"
	BookingPaymentFullyPaid   BookingPaymentStatus = "fully_paid"
)

type Booking struct {
	BaseNoDelete
	Reference           string          `db:"reference"`
	ClientID            uuid.UUID       `db:"client_id"`
	PerformerID         uuid.UUID       `db:"performer_id"`
	ServiceID           uuid.UUID       `db:"service_id"`
	EventDate           time.Time       `db:"event_date"`
	DurationHours       decimal.Decimal `db:"duration_hours"`
	VenueAddress        string          `db:"venue_address"`
	GuestCount          int             `db:"guest_count"`
	SpecialRequirements string          `db:"special_requirements"`

	BaseAmount      decimal.Decimal `db:"base_amount"`
	ReferralPercent decimal.Decimal `db:"referral_percent"`
	ReferralAmount  decimal.Decimal `db:"referral_amount"`
	DepositPercent  decimal.Decimal `db:"deposit_percent"`
	DepositAmount   decimal.Decimal `db:"deposit_amount"`
	TotalAmount     decimal.Decimal `db:"total_amount"`

	Status        BookingStatus        `db:"status"`
	PaymentStatus BookingPaymentStatus `db:"payment_status"`

	// Set when a client cancels inside the notice window; an admin decides.
	CancellationReview      bool       `db:"cancellation_review"`
	CancellationRequestedBy *uuid.UUID `db:"cancellation_requested_by"`
	CancellationRequestedAt *time.Time `db:"cancellation_requested_at"`

	StatusReason string `db:"status_reason"`
	Version      int    `db:"version"`
}

// Balance is what remains after the deposit.
func (b *Booking) Balance() decimal.Decimal {
	return b.TotalAmount.Sub(b.DepositAmount)
}
