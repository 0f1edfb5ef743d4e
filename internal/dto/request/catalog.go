package request

import "github.com/shopspring/decimal"

type CreateServiceRequest struct {
	// PerformerID is only honoured for admins; performers always create for themselves.
	PerformerID      string          `json:"performer_id" validate:"omitempty,uuid"`
	Name             string          `json:"name" validate:"required,min=2,max=200"`
	BaseRate         decimal.Decimal `json:"base_rate"`
	RateType         string          `json:"rate_type" validate:"required,oneof=per_hour flat per_person"`
	MinDurationHours decimal.Decimal `json:"min_duration_hours"`
}

type UpdateSettingsRequest struct {
	DepositPercent  decimal.Decimal `json:"deposit_percent"`
	ReferralPercent decimal.Decimal `json:"referral_percent"`
}
