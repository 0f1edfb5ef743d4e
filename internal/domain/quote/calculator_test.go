package quote

import (
	"testing"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/domain"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func perHour(rate string) *entity.PerformerService {
	return &entity.PerformerService{
		BaseRate:         dec(rate),
		RateType:         entity.RateTypePerHour,
		MinDurationHours: dec("1"),
		Active:           true,
	}
}

func TestCalculateDefaultScenario(t *testing.T) {
	q, err := Calculate(perHour("150"), Request{DurationHours: dec("2")}, Rates{
		DepositPercent:  dec("50"),
		ReferralPercent: dec("10"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]decimal.Decimal{
		"base":     dec("300.00"),
		"referral": dec("30.00"),
		"total":    dec("330.00"),
		"deposit":  dec("165.00"),
	}
	got := map[string]decimal.Decimal{
		"base":     q.BaseAmount,
		"referral": q.ReferralAmount,
		"total":    q.TotalAmount,
		"deposit":  q.DepositAmount,
	}
	for k, w := range want {
		if !got[k].Equal(w) {
			t.Fatalf("%s: expected %s, got %s", k, w, got[k])
		}
	}
}

func TestCalculatePerHourProperty(t *testing.T) {
	rates := []string{"0.01", "49.99", "150", "333.33", "1200"}
	durations := []string{"1", "1.5", "2.25", "3", "7.75"}
	percents := []string{"0", "7.5", "10", "33.33", "50", "100"}

	for _, rate := range rates {
		for _, dur := range durations {
			for _, ref := range percents {
				for _, dep := range percents {
					q, err := Calculate(perHour(rate), Request{DurationHours: dec(dur)}, Rates{
						DepositPercent:  dec(dep),
						ReferralPercent: dec(ref),
					})
					if err != nil {
						t.Fatalf("rate=%s dur=%s ref=%s dep=%s: %v", rate, dur, ref, dep, err)
					}

					base := Round2(dec(rate).Mul(dec(dur)))
					wantTotal := base.Add(Round2(base.Mul(dec(ref)).Div(hundred)))
					wantDeposit := Round2(wantTotal.Mul(dec(dep)).Div(hundred))

					if !q.TotalAmount.Equal(wantTotal) {
						t.Fatalf("rate=%s dur=%s ref=%s: total %s, want %s", rate, dur, ref, q.TotalAmount, wantTotal)
					}
					if !q.DepositAmount.Equal(wantDeposit) {
						t.Fatalf("rate=%s dur=%s dep=%s: deposit %s, want %s", rate, dur, dep, q.DepositAmount, wantDeposit)
					}
					raw := dec(rate).Mul(dec(dur))
					if raw.Equal(base) {
						onePass := Round2(raw.Mul(hundred.Add(dec(ref))).Div(hundred))
						if !q.TotalAmount.Equal(onePass) {
							t.Fatalf("rate=%s dur=%s ref=%s: total %s, single rounding gives %s", rate, dur, ref, q.TotalAmount, onePass)
						}
					}
					if q.DepositAmount.GreaterThan(q.TotalAmount) {
						t.Fatalf("deposit %s exceeds total %s", q.DepositAmount, q.TotalAmount)
					}
					if !q.TotalAmount.Equal(q.TotalAmount.Round(2)) {
						t.Fatalf("total %s not rounded to cents", q.TotalAmount)
					}
				}
			}
		}
	}
}

func TestCalculateRoundsHalfUp(t *testing.T) {
	// base 10.05, referral 5% = 0.5025 -> 0.50, total 10.55, deposit 50% = 5.275 -> 5.28
	q, err := Calculate(&entity.PerformerService{
		BaseRate: dec("10.05"),
		RateType: entity.RateTypeFlat,
		Active:   true,
	}, Request{DurationHours: dec("1")}, Rates{DepositPercent: dec("50"), ReferralPercent: dec("5")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.ReferralAmount.Equal(dec("0.50")) || !q.TotalAmount.Equal(dec("10.55")) || !q.DepositAmount.Equal(dec("5.28")) {
		t.Fatalf("unexpected rounding: %+v", q)
	}
}

func TestCalculateRateTypes(t *testing.T) {
	rates := Rates{DepositPercent: dec("50"), ReferralPercent: dec("0")}

	flat, err := Calculate(&entity.PerformerService{BaseRate: dec("500"), RateType: entity.RateTypeFlat, Active: true},
		Request{DurationHours: dec("4")}, rates)
	if err != nil || !flat.BaseAmount.Equal(dec("500")) {
		t.Fatalf("flat: %v %s", err, flat.BaseAmount)
	}

	person, err := Calculate(&entity.PerformerService{BaseRate: dec("12.50"), RateType: entity.RateTypePerPerson, Active: true},
		Request{DurationHours: dec("2"), GuestCount: 40}, rates)
	if err != nil || !person.BaseAmount.Equal(dec("500")) {
		t.Fatalf("per person: %v %s", err, person.BaseAmount)
	}
}

func TestCalculateErrors(t *testing.T) {
	ok := Rates{DepositPercent: dec("50"), ReferralPercent: dec("10")}

	tests := []struct {
		name    string
		service *entity.PerformerService
		req     Request
		rates   Rates
		code    domain.Code
	}{
		{"zero duration", perHour("100"), Request{DurationHours: dec("0")}, ok, domain.CodeInvalidDuration},
		{"negative duration", perHour("100"), Request{DurationHours: dec("-1")}, ok, domain.CodeInvalidDuration},
		{"below minimum", perHour("100"), Request{DurationHours: dec("0.5")}, ok, domain.CodeInvalidDuration},
		{"no guests", &entity.PerformerService{BaseRate: dec("10"), RateType: entity.RateTypePerPerson, Active: true},
			Request{DurationHours: dec("1")}, ok, domain.CodeInvalidDuration},
		{"missing service", nil, Request{DurationHours: dec("2")}, ok, domain.CodeUnknownService},
		{"inactive service", &entity.PerformerService{BaseRate: dec("10"), RateType: entity.RateTypeFlat},
			Request{DurationHours: dec("2")}, ok, domain.CodeUnknownService},
		{"deposit above 100", perHour("100"), Request{DurationHours: dec("2")},
			Rates{DepositPercent: dec("100.01"), ReferralPercent: dec("10")}, domain.CodeInvalidRatePercent},
		{"negative referral", perHour("100"), Request{DurationHours: dec("2")},
			Rates{DepositPercent: dec("50"), ReferralPercent: dec("-1")}, domain.CodeInvalidRatePercent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.service, tt.req, tt.rates)
			if !domain.HasCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestCalculateIsRepeatable(t *testing.T) {
	rates := Rates{DepositPercent: dec("33.33"), ReferralPercent: dec("7.5")}
	first, _ := Calculate(perHour("99.99"), Request{DurationHours: dec("2.5")}, rates)
	for i := 0; i < 10; i++ {
		again, _ := Calculate(perHour("99.99"), Request{DurationHours: dec("2.5")}, rates)
		if !again.TotalAmount.Equal(first.TotalAmount) || !again.DepositAmount.Equal(first.DepositAmount) {
			t.Fatalf("re-quote drifted: %+v vs %+v", again, first)
		}
	}
}
