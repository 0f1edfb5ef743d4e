package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlatformSettings is the single row of system-wide booking percentages.
type PlatformSettings struct {
	DepositPercent  decimal.Decimal `db:"deposit_percent"`
	ReferralPercent decimal.Decimal `db:"referral_percent"`
	UpdatedBy       *uuid.UUID      `db:"updated_by"`
	UpdatedAt       time.Time       `db:"updated_at"`
}
