package request

import "github.com/shopspring/decimal"

type ReceiptUploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

type SubmitPaymentRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method" validate:"required,oneof=payid bank_transfer cash"`
	ReceiptRef   string          `json:"receipt_ref" validate:"required,max=500"`
	PayerName    string          `json:"payer_name" validate:"required,max=200"`
	PayerContact string          `json:"payer_contact" validate:"required,max=200"`
}

type VerifyPaymentRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=verified rejected"`
	Notes   string `json:"notes" validate:"max=1000"`
}

type ResolvePaymentRequest struct {
	Notes string `json:"notes" validate:"required,max=1000"`
}
