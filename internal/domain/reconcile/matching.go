// Package reconcile decides what a verified payment settles on its booking.
package reconcile

import (
	"entertainer-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

// DefaultTolerance is the largest difference, in currency units, still treated as an exact match.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Match is the result of comparing a payment amount with what the booking expects next.
type Match struct {
	Kind entity.PaymentKind
	// Expected is the amount the booking was waiting for: the deposit while unpaid, the balance once the deposit is in.
	Expected decimal.Decimal
	// PaymentStatus is the booking payment status after applying a matched payment.
	PaymentStatus entity.BookingPaymentStatus
	Matched       bool
}

// Expected returns the next outstanding amount and the kind of payment that settles it.
func Expected(b *entity.Booking) (entity.PaymentKind, decimal.Decimal) {
	switch b.PaymentStatus {
	case entity.BookingPaymentUnpaid:
		if b.DepositAmount.IsPositive() && b.DepositAmount.LessThan(b.TotalAmount) {
			return entity.PaymentKindDeposit, b.DepositAmount
		}
		return entity.PaymentKindFull, b.TotalAmount
	case entity.BookingPaymentDepositPaid:
		return entity.PaymentKindBalance, b.Balance()
	}
	return entity.PaymentKindNone, decimal.Zero
}

// Amount matches a payment against the booking. A booking that is still unpaid
// also accepts the full total in one payment.
func Amount(b *entity.Booking, amount, tolerance decimal.Decimal) Match {
	kind, expected := Expected(b)
	m := Match{Kind: entity.PaymentKindUnmatched, Expected: expected, PaymentStatus: b.PaymentStatus}

	switch kind {
	case entity.PaymentKindDeposit:
		if within(amount, b.DepositAmount, tolerance) {
			m.Kind, m.PaymentStatus, m.Matched = entity.PaymentKindDeposit, entity.BookingPaymentDepositPaid, true
		} else if within(amount, b.TotalAmount, tolerance) {
			m.Kind, m.PaymentStatus, m.Matched = entity.PaymentKindFull, entity.BookingPaymentFullyPaid, true
		}
	case entity.PaymentKindFull:
		if within(amount, b.TotalAmount, tolerance) {
			m.Kind, m.PaymentStatus, m.Matched = entity.PaymentKindFull, entity.BookingPaymentFullyPaid, true
		}
	case entity.PaymentKindBalance:
		if within(amount, expected, tolerance) {
			m.Kind, m.PaymentStatus, m.Matched = entity.PaymentKindBalance, entity.BookingPaymentFullyPaid, true
		}
	}
	return m
}

func within(amount, expected, tolerance decimal.Decimal) bool {
	return expected.IsPositive() && amount.Sub(expected).Abs().LessThanOrEqual(tolerance)
}
