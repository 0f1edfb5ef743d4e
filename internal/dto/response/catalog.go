package response

import (
	"time"

	"entertainer-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

type ServiceResponse struct {
	ID               string          `json:"id"`
	PerformerID      string          `json:"performer_id"`
	Name             string          `json:"name"`
	BaseRate         decimal.Decimal `json:"base_rate"`
	RateType         string          `json:"rate_type"`
	MinDurationHours decimal.Decimal `json:"min_duration_hours"`
	Active           bool            `json:"active"`
}

func NewServiceResponse(s *entity.PerformerService) ServiceResponse {
	return ServiceResponse{
		ID:               s.ID.String(),
		PerformerID:      s.PerformerID.String(),
		Name:             s.Name,
		BaseRate:         s.BaseRate,
		RateType:         string(s.RateType),
		MinDurationHours: s.MinDurationHours,
		Active:           s.Active,
	}
}

type SettingsResponse struct {
	DepositPercent  decimal.Decimal `json:"deposit_percent"`
	ReferralPercent decimal.Decimal `json:"referral_percent"`
	UpdatedBy       string          `json:"updated_by,omitempty"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
	// Default is true when no admin has saved settings and configured defaults apply.
	Default bool `json:"default"`
}
