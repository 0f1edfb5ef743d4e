package response

import (
	"time"

	"entertainer-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
	ID              string          `json:"id"`
	BookingID       string          `json:"booking_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	PayerName       string          `json:"payer_name"`
	PayerContact    string          `json:"payer_contact"`
	ReceiptRef      string          `json:"receipt_ref"`
	Status          string          `json:"status"`
	Kind            string          `json:"kind,omitempty"`
	ReviewFlag      string          `json:"review_flag,omitempty"`
	VerifiedBy      string          `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	ResolutionNotes string          `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func NewPaymentResponse(p *entity.Payment) *PaymentResponse {
	r := &PaymentResponse{
		ID:              p.ID.String(),
		BookingID:       p.BookingID.String(),
		Amount:          p.Amount,
		Method:          string(p.Method),
		PayerName:       p.PayerName,
		PayerContact:    p.PayerContact,
		ReceiptRef:      p.ReceiptRef,
		Status:          string(p.Status),
		Kind:            string(p.Kind),
		ReviewFlag:      string(p.ReviewFlag),
		VerifiedAt:      p.VerifiedAt,
		Notes:           p.Notes,
		ResolutionNotes: p.ResolutionNotes,
		CreatedAt:       p.CreatedAt,
	}
	if p.VerifiedBy != nil {
		r.VerifiedBy = p.VerifiedBy.String()
	}
	return r
}

// VerificationResponse reports the recorded outcome of a verification.
type VerificationResponse struct {
	Payment       *PaymentResponse `json:"payment"`
	BookingStatus string           `json:"booking_status"`
	PaymentStatus string           `json:"booking_payment_status"`
	Expected      decimal.Decimal  `json:"expected_amount"`
	// Code is AmountMismatch when a verified payment matched no outstanding amount.
	Code string `json:"code,omitempty"`
	// AlreadyDecided is set when the payment had been verified or rejected before this call.
	AlreadyDecided bool `json:"already_decided"`
}

type UploadResponse struct {
	ReceiptRef string    `json:"receipt_ref"`
	UploadURL  string    `json:"upload_url"`
	Method     string    `json:"method"`
	ExpiresAt  time.Time `json:"expires_at"`
}
