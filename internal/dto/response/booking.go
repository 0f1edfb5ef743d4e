package response

import (
	"time"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/domain/lifecycle"
	"entertainer-booking/internal/domain/quote"

	"github.com/shopspring/decimal"
)

type QuoteResponse struct {
	BaseAmount      decimal.Decimal `json:"base_amount"`
	ReferralPercent decimal.Decimal `json:"referral_percent"`
	ReferralAmount  decimal.Decimal `json:"referral_amount"`
	DepositPercent  decimal.Decimal `json:"deposit_percent"`
	DepositAmount   decimal.Decimal `json:"deposit_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
}

func NewQuoteResponse(q quote.Quote, currency string) *QuoteResponse {
	return &QuoteResponse{
		BaseAmount:      q.BaseAmount,
		ReferralPercent: q.ReferralPercent,
		ReferralAmount:  q.ReferralAmount,
		DepositPercent:  q.DepositPercent,
		DepositAmount:   q.DepositAmount,
		TotalAmount:     q.TotalAmount,
		Currency:        currency,
	}
}

type BookingResponse struct {
	ID                  string          `json:"id"`
	Reference           string          `json:"reference"`
	ClientID            string          `json:"client_id"`
	PerformerID         string          `json:"performer_id"`
	ServiceID           string          `json:"service_id"`
	EventDate           time.Time       `json:"event_date"`
	DurationHours       decimal.Decimal `json:"duration_hours"`
	VenueAddress        string          `json:"venue_address"`
	GuestCount          int             `json:"guest_count"`
	SpecialRequirements string          `json:"special_requirements,omitempty"`
	Quote               QuoteResponse   `json:"quote"`
	Status              string          `json:"status"`
	PaymentStatus       string          `json:"payment_status"`
	StatusReason        string          `json:"status_reason,omitempty"`
	CancellationReview  bool            `json:"cancellation_review"`
	AllowedTransitions  []string        `json:"allowed_transitions"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func NewBookingResponse(b *entity.Booking, currency string) *BookingResponse {
	allowed := lifecycle.Allowed(b.Status)
	next := make([]string, len(allowed))
	for i, s := range allowed {
		next[i] = string(s)
	}

	return &BookingResponse{
		ID:                  b.ID.String(),
		Reference:           b.Reference,
		ClientID:            b.ClientID.String(),
		PerformerID:         b.PerformerID.String(),
		ServiceID:           b.ServiceID.String(),
		EventDate:           b.EventDate,
		DurationHours:       b.DurationHours,
		VenueAddress:        b.VenueAddress,
		GuestCount:          b.GuestCount,
		SpecialRequirements: b.SpecialRequirements,
		Quote: QuoteResponse{
			BaseAmount:      b.BaseAmount,
			ReferralPercent: b.ReferralPercent,
			ReferralAmount:  b.ReferralAmount,
			DepositPercent:  b.DepositPercent,
			DepositAmount:   b.DepositAmount,
			TotalAmount:     b.TotalAmount,
			Currency:        currency,
		},
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		StatusReason:       b.StatusReason,
		CancellationReview: b.CancellationReview,
		AllowedTransitions: next,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

type TransitionResponse struct {
	BookingID        string `json:"booking_id"`
	PreviousStatus   string `json:"previous_status"`
	NewStatus        string `json:"new_status"`
	FlaggedForReview bool   `json:"flagged_for_review"`
}

type AuditEntryResponse struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	FromState  string         `json:"from_state,omitempty"`
	ToState    string         `json:"to_state,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewAuditEntryResponse(e *entity.AuditLog) AuditEntryResponse {
	r := AuditEntryResponse{
		ID:         e.ID.String(),
		EntityType: string(e.EntityType),
		EntityID:   e.EntityID.String(),
		Action:     e.Action,
		FromState:  e.FromState,
		ToState:    e.ToState,
		Reason:     e.Reason,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
	if e.ActorID != nil {
		r.ActorID = e.ActorID.String()
	}
	return r
}
