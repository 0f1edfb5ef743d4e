package request

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteRequest struct {
	PerformerID   string          `json:"performer_id" validate:"required,uuid"`
	ServiceID     string          `json:"service_id" validate:"required,uuid"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	GuestCount    int             `json:"guest_count" validate:"gte=0,lte=100000"`
}

type CreateBookingRequest struct {
	PerformerID         string          `json:"performer_id" validate:"required,uuid"`
	ServiceID           string          `json:"service_id" validate:"required,uuid"`
	EventDate           time.Time       `json:"event_date" validate:"required"`
	DurationHours       decimal.Decimal `json:"duration_hours"`
	VenueAddress        string          `json:"venue_address" validate:"required,min=5,max=500"`
	GuestCount          int             `json:"guest_count" validate:"gte=0,lte=100000"`
	SpecialRequirements string          `json:"special_requirements" validate:"max=2000"`
}

// UpdateBookingRequest edits a booking before it is quoted. Nil fields are left unchanged.
type UpdateBookingRequest struct {
	EventDate           *time.Time       `json:"event_date,omitempty"`
	DurationHours       *decimal.Decimal `json:"duration_hours,omitempty"`
	VenueAddress        *string          `json:"venue_address,omitempty" validate:"omitempty,min=5,max=500"`
	GuestCount          *int             `json:"guest_count,omitempty" validate:"omitempty,gte=0,lte=100000"`
	SpecialRequirements *string          `json:"special_requirements,omitempty" validate:"omitempty,max=2000"`
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=quote_requested quote_sent confirmed in_progress completed cancelled rejected"`
	Reason string `json:"reason" validate:"max=1000"`
}

// QuoteBookingRequest lets an admin override the computed base amount.
type QuoteBookingRequest struct {
	BaseAmount *decimal.Decimal `json:"base_amount,omitempty"`
	Note       string           `json:"note" validate:"max=1000"`
}

type BookingListRequest struct {
	PaginatedRequest
	Status             string `json:"status" validate:"omitempty,oneof=pending quote_requested quote_sent confirmed in_progress completed cancelled rejected"`
	CancellationReview bool   `json:"cancellation_review"`
}

// CancellationDecisionRequest is an admin's answer to a late client cancellation.
type CancellationDecisionRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason" validate:"max=1000"`
}
