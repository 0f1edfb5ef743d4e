package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RateType string

const (
	RateTypePerHour   RateType = "per_hour"
	RateTypeFlat      RateType = "flat"
	RateTypePerPerson RateType = "per_person"
)

type Performer struct {
	BaseNoDelete
	UserID    uuid.UUID `db:"user_id"`
	StageName string    `db:"stage_name"`
	Bio       string    `db:"bio"`
	Category  string    `db:"category"`
	// ReferralPercent overrides the platform rate when set.
	ReferralPercent decimal.NullDecimal `db:"referral_percent"`
	Active          bool                `db:"active"`
}

type PerformerService struct {
	BaseNoDelete
	PerformerID      uuid.UUID       `db:"performer_id"`
	Name             string          `db:"name"`
	BaseRate         decimal.Decimal `db:"base_rate"`
	RateType         RateType        `db:"rate_type"`
	MinDurationHours decimal.Decimal `db:"min_duration_hours"`
	Active           bool            `db:"active"`
}
