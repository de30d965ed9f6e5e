package services

import (
	"time"

	"gymcore/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

// ============================================================
// Schedule arithmetic
// ============================================================

// advanceSchedule returns the next payment date one frequency unit after
// from. Monthly and yearly advances are calendar-aware: the day of month is
// taken from anchorDay (the day the schedule was anchored on at creation)
// and clamped to the target month's length, so a schedule anchored on the
// 31st lands on Feb 28/29 and returns to the 31st in March.
func advanceSchedule(from time.Time, frequency string, anchorDay int) time.Time {
	switch frequency {
	case models.FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case models.FrequencyMonthly:
		return nextMonthOn(from, 1, anchorDay)
	case models.FrequencyYearly:
		return nextYearOn(from, anchorDay)
	}
	return from
}

// nextMonthOn returns the date months ahead of from, on anchorDay clamped
// to the target month's length. Time of day is preserved.
func nextMonthOn(from time.Time, months, anchorDay int) time.Time {
	// Normalize to the first of the month before adding, so that
	// AddDate cannot overflow into the month after the target.
	first := time.Date(from.Year(), from.Month(), 1, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
	target := first.AddDate(0, months, 0)

	day := anchorDay
	if max := daysInMonth(target.Year(), target.Month()); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return time.Date(target.Year(), target.Month(), day, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
}

// nextYearOn returns the same month one year ahead, with leap-year clamping
// (Feb 29 anchors land on Feb 28 in non-leap years).
func nextYearOn(from time.Time, anchorDay int) time.Time {
	year := from.Year() + 1
	day := anchorDay
	if max := daysInMonth(year, from.Month()); day > max {
		day = max
	}
	return time.Date(year, from.Month(), day, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
}

// firstDueDate derives an installment plan's first due date from its start
// date and optional due day of month (0 = use the start date's day). A due
// day earlier in the month than the start date rolls into the next month.
func firstDueDate(start time.Time, dueDayOfMonth int) time.Time {
	if dueDayOfMonth <= 0 {
		return start
	}

	day := dueDayOfMonth
	if max := daysInMonth(start.Year(), start.Month()); day > max {
		day = max
	}
	due := time.Date(start.Year(), start.Month(), day, start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
	if due.Before(start) {
		due = nextMonthOn(start, 1, dueDayOfMonth)
	}
	return due
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ============================================================
// Money arithmetic
// ============================================================

// splitInstallments divides total into n parts rounded to the currency's
// minor unit. The returned per-installment amount applies to the first n-1
// installments; the final installment is total minus the sum of those, so
// the series always sums to total exactly.
func splitInstallments(total decimal.Decimal, n int) (per, final decimal.Decimal) {
	per = total.Div(decimal.NewFromInt(int64(n))).RoundFloor(2)
	final = total.Sub(per.Mul(decimal.NewFromInt(int64(n - 1))))
	return per, final
}
