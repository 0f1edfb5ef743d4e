package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending_verification"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusRejected PaymentStatus = "rejected"
)

type PaymentMethod string

const (
	PaymentMethodPayID        PaymentMethod = "payid"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
)

// PaymentKind records which outstanding amount a verified payment settled.
type PaymentKind string

const (
	PaymentKindNone      PaymentKind = ""
	PaymentKindDeposit   PaymentKind = "deposit"
	PaymentKindBalance   PaymentKind = "balance"
	PaymentKindFull      PaymentKind = "full"
	PaymentKindUnmatched PaymentKind = "unmatched"
)

type ReviewFlag string

const (
	ReviewFlagNone           ReviewFlag = ""
	ReviewFlagAmountMismatch ReviewFlag = "amount_mismatch"
)

type Payment struct {
	BaseNoDelete
	BookingID    uuid.UUID       `db:"booking_id"`
	Amount       decimal.Decimal `db:"amount"`
	Method       PaymentMethod   `db:"method"`
	PayerName    string          `db:"payer_name"`
	PayerContact string          `db:"payer_contact"`
	ReceiptRef   string          `db:"receipt_ref"`
	Status       PaymentStatus   `db:"status"`
	Kind         PaymentKind     `db:"kind"`
	ReviewFlag   ReviewFlag      `db:"review_flag"`
	VerifiedBy   *uuid.UUID      `db:"verified_by"`
	VerifiedAt   *time.Time      `db:"verified_at"`
	Notes        string          `db:"notes"`

	ResolvedBy      *uuid.UUID `db:"resolved_by"`
	ResolvedAt      *time.Time `db:"resolved_at"`
	ResolutionNotes string     `db:"resolution_notes"`
}

// Decided reports whether an admin has already verified or rejected the payment.
func (p *Payment) Decided() bool {
	return p.Status == PaymentStatusVerified || p.Status == PaymentStatusRejected
}
