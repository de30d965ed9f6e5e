package services

import (
	"testing"
	"time"

	"gymcore/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvanceScheduleDailyWeekly(t *testing.T) {
	from := date(2025, time.January, 15)

	require.Equal(t, date(2025, time.January, 16), advanceSchedule(from, models.FrequencyDaily, 15))
	require.Equal(t, date(2025, time.January, 22), advanceSchedule(from, models.FrequencyWeekly, 15))
}

func TestAdvanceScheduleMonthly(t *testing.T) {
	// Plain case: Jan 15 -> Feb 15
	got := advanceSchedule(date(2025, time.January, 15), models.FrequencyMonthly, 15)
	require.Equal(t, date(2025, time.February, 15), got)

	// Anchored on the 31st: February clamps to 28
	got = advanceSchedule(date(2025, time.January, 31), models.FrequencyMonthly, 31)
	require.Equal(t, date(2025, time.February, 28), got)

	// And the anchor is restored in March
	got = advanceSchedule(got, models.FrequencyMonthly, 31)
	require.Equal(t, date(2025, time.March, 31), got)

	// Leap year February keeps the 29th
	got = advanceSchedule(date(2024, time.January, 31), models.FrequencyMonthly, 31)
	require.Equal(t, date(2024, time.February, 29), got)

	// Anchored on the 30th: December -> January keeps the 30th across years
	got = advanceSchedule(date(2025, time.December, 30), models.FrequencyMonthly, 30)
	require.Equal(t, date(2026, time.January, 30), got)
}

func TestAdvanceScheduleYearly(t *testing.T) {
	// Feb 29 anchors land on Feb 28 in non-leap years
	got := advanceSchedule(date(2024, time.February, 29), models.FrequencyYearly, 29)
	require.Equal(t, date(2025, time.February, 28), got)

	// And return to Feb 29 when the leap year comes around
	got = advanceSchedule(date(2027, time.February, 28), models.FrequencyYearly, 29)
	require.Equal(t, date(2028, time.February, 29), got)

	got = advanceSchedule(date(2025, time.June, 10), models.FrequencyYearly, 10)
	require.Equal(t, date(2026, time.June, 10), got)
}

func TestAdvanceSchedulePreservesTimeOfDay(t *testing.T) {
	from := time.Date(2025, time.January, 31, 9, 30, 0, 0, time.UTC)
	got := advanceSchedule(from, models.FrequencyMonthly, 31)
	require.Equal(t, time.Date(2025, time.February, 28, 9, 30, 0, 0, time.UTC), got)
}

func TestFirstDueDate(t *testing.T) {
	start := date(2025, time.March, 10)

	// No due day configured: first charge is due on the start date
	require.Equal(t, start, firstDueDate(start, 0))

	// Due day later in the month
	require.Equal(t, date(2025, time.March, 20), firstDueDate(start, 20))

	// Due day already passed this month: roll into next month
	require.Equal(t, date(2025, time.April, 5), firstDueDate(start, 5))

	// Due day equals start day: due immediately
	require.Equal(t, start, firstDueDate(start, 10))

	// Due day beyond the month's length clamps
	require.Equal(t, date(2025, time.February, 28), firstDueDate(date(2025, time.February, 1), 31))
}

func TestSplitInstallments(t *testing.T) {
	// The canonical rounding case: 100 / 3
	per, final := splitInstallments(decimal.NewFromInt(100), 3)
	require.True(t, per.Equal(decimal.RequireFromString("33.33")), "per = %s", per)
	require.True(t, final.Equal(decimal.RequireFromString("33.34")), "final = %s", final)

	// Series sums to the total exactly
	sum := per.Mul(decimal.NewFromInt(2)).Add(final)
	require.True(t, sum.Equal(decimal.NewFromInt(100)))

	// Even split has no remainder
	per, final = splitInstallments(decimal.NewFromInt(120), 4)
	require.True(t, per.Equal(decimal.NewFromInt(30)))
	require.True(t, final.Equal(decimal.NewFromInt(30)))

	// Single installment carries the whole total
	per, final = splitInstallments(decimal.RequireFromString("59.99"), 1)
	require.True(t, per.Equal(decimal.RequireFromString("59.99")))
	require.True(t, final.Equal(decimal.RequireFromString("59.99")))
}

func TestAmountForInstallment(t *testing.T) {
	plan := &models.InstallmentPlan{
		TotalAmount:          decimal.NewFromInt(100),
		NumberOfInstallments: 3,
		InstallmentAmount:    decimal.RequireFromString("33.33"),
	}

	require.True(t, plan.AmountForInstallment(1).Equal(decimal.RequireFromString("33.33")))
	require.True(t, plan.AmountForInstallment(2).Equal(decimal.RequireFromString("33.33")))
	require.True(t, plan.AmountForInstallment(3).Equal(decimal.RequireFromString("33.34")))
}
