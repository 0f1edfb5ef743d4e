package utils

import (
	"fmt"
	"time"
)

// ReferencePrefix starts every human-readable booking reference.
const ReferencePrefix = "FE"

// FormatBookingReference renders FE-YYYYMMDD-NNNN. seq is the per-day counter;
// it widens past four digits rather than wrapping.
func FormatBookingReference(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", ReferencePrefix, day.Format("20060102"), seq)
}

// ReferenceDay truncates t to the calendar day the reference counter is keyed on.
func ReferenceDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
