package reconcile

import (
	"testing"

	"entertainer-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func booking(total, deposit string, status entity.BookingPaymentStatus) *entity.Booking {
	return &entity.Booking{TotalAmount: dec(total), DepositAmount: dec(deposit), PaymentStatus: status}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name    string
		b       *entity.Booking
		amount  string
		kind    entity.PaymentKind
		status  entity.BookingPaymentStatus
		matched bool
	}{
		{"exact deposit", booking("330", "165", entity.BookingPaymentUnpaid), "165.00",
			entity.PaymentKindDeposit, entity.BookingPaymentDepositPaid, true},
		{"deposit within a cent", booking("330", "165", entity.BookingPaymentUnpaid), "164.99",
			entity.PaymentKindDeposit, entity.BookingPaymentDepositPaid, true},
		{"underpaid deposit", booking("330", "165", entity.BookingPaymentUnpaid), "100",
			entity.PaymentKindUnmatched, entity.BookingPaymentUnpaid, false},
		{"two cents short", booking("330", "165", entity.BookingPaymentUnpaid), "164.98",
			entity.PaymentKindUnmatched, entity.BookingPaymentUnpaid, false},
		{"full amount up front", booking("330", "165", entity.BookingPaymentUnpaid), "330",
			entity.PaymentKindFull, entity.BookingPaymentFullyPaid, true},
		{"balance", booking("330", "165", entity.BookingPaymentDepositPaid), "165",
			entity.PaymentKindBalance, entity.BookingPaymentFullyPaid, true},
		{"total after deposit", booking("330", "165", entity.BookingPaymentDepositPaid), "330",
			entity.PaymentKindUnmatched, entity.BookingPaymentDepositPaid, false},
		{"hundred percent deposit", booking("330", "330", entity.BookingPaymentUnpaid), "330",
			entity.PaymentKindFull, entity.BookingPaymentFullyPaid, true},
		{"zero deposit", booking("330", "0", entity.BookingPaymentUnpaid), "0.01",
			entity.PaymentKindUnmatched, entity.BookingPaymentUnpaid, false},
		{"already paid", booking("330", "165", entity.BookingPaymentFullyPaid), "165",
			entity.PaymentKindUnmatched, entity.BookingPaymentFullyPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Amount(tt.b, dec(tt.amount), DefaultTolerance)
			if m.Kind != tt.kind || m.PaymentStatus != tt.status || m.Matched != tt.matched {
				t.Fatalf("got %+v, want kind=%s status=%s matched=%v", m, tt.kind, tt.status, tt.matched)
			}
		})
	}
}

func TestExpected(t *testing.T) {
	kind, amount := Expected(booking("330", "165", entity.BookingPaymentDepositPaid))
	if kind != entity.PaymentKindBalance || !amount.Equal(dec("165")) {
		t.Fatalf("unexpected %s %s", kind, amount)
	}
}
