// Package quote computes the monetary breakdown of a booking.
package quote

import (
	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Rates are the percentages in force for a quote, resolved by the caller from
// platform settings and any performer override.
type Rates struct {
	DepositPercent  decimal.Decimal
	ReferralPercent decimal.Decimal
}

// Request carries the client's sizing of the event.
type Request struct {
	DurationHours decimal.Decimal
	GuestCount    int
}

type Quote struct {
	BaseAmount      decimal.Decimal
	ReferralPercent decimal.Decimal
	ReferralAmount  decimal.Decimal
	DepositPercent  decimal.Decimal
	DepositAmount   decimal.Decimal
	TotalAmount     decimal.Decimal
}

// Round2 rounds half away from zero to cents; for money amounts that is half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Validate checks both percentages lie in [0, 100].
func (r Rates) Validate() error {
	if !inPercentRange(r.DepositPercent) {
		return domain.NewValidation(domain.CodeInvalidRatePercent, "deposit_percent", "deposit percent must be between 0 and 100")
	}
	if !inPercentRange(r.ReferralPercent) {
		return domain.NewValidation(domain.CodeInvalidRatePercent, "referral_percent", "referral percent must be between 0 and 100")
	}
	return nil
}

// Calculate prices a request against a service. It has no side effects.
func Calculate(service *entity.PerformerService, req Request, rates Rates) (Quote, error) {
	if service == nil || !service.Active {
		return Quote{}, domain.NewValidation(domain.CodeUnknownService, "service_id", "service is not available")
	}
	if err := rates.Validate(); err != nil {
		return Quote{}, err
	}

	if !req.DurationHours.IsPositive() {
		return Quote{}, domain.NewValidation(domain.CodeInvalidDuration, "duration_hours", "duration must be greater than zero")
	}
	if req.DurationHours.LessThan(service.MinDurationHours) {
		return Quote{}, domain.NewValidation(domain.CodeInvalidDuration, "duration_hours",
			"duration is below the service minimum of "+service.MinDurationHours.String()+" hours")
	}

	var base decimal.Decimal
	switch service.RateType {
	case entity.RateTypePerHour:
		base = service.BaseRate.Mul(req.DurationHours)
	case entity.RateTypePerPerson:
		if req.GuestCount <= 0 {
			return Quote{}, domain.NewValidation(domain.CodeInvalidDuration, "guest_count", "guest count must be greater than zero for per-person services")
		}
		base = service.BaseRate.Mul(decimal.NewFromInt(int64(req.GuestCount)))
	case entity.RateTypeFlat:
		base = service.BaseRate
	default:
		return Quote{}, domain.NewValidation(domain.CodeUnknownService, "service_id", "service has an unknown rate type")
	}

	return FromBase(base, rates)
}

// FromBase derives referral, total and deposit from a base amount. Admins use
// it directly for custom quotes.
func FromBase(base decimal.Decimal, rates Rates) (Quote, error) {
	if err := rates.Validate(); err != nil {
		return Quote{}, err
	}
	base = Round2(base)
	if !base.IsPositive() {
		return Quote{}, domain.NewValidation(domain.CodeValidationFailed, "base_amount", "quote amount must be greater than zero")
	}

	referral := Round2(base.Mul(rates.ReferralPercent).Div(hundred))
	total := base.Add(referral)
	deposit := Round2(total.Mul(rates.DepositPercent).Div(hundred))

	return Quote{
		BaseAmount:      base,
		ReferralPercent: rates.ReferralPercent,
		ReferralAmount:  referral,
		DepositPercent:  rates.DepositPercent,
		DepositAmount:   deposit,
		TotalAmount:     total,
	}, nil
}

// Apply copies the breakdown onto a booking.
func (q Quote) Apply(b *entity.Booking) {
	b.BaseAmount = q.BaseAmount
	b.ReferralPercent = q.ReferralPercent
	b.ReferralAmount = q.ReferralAmount
	b.DepositPercent = q.DepositPercent
	b.DepositAmount = q.DepositAmount
	b.TotalAmount = q.TotalAmount
}

func inPercentRange(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}
