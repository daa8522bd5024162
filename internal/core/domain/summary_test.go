package domain_test

import (
	"testing"
	"time"

	"github.com/gigworks/gigtax/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowFor_Weekly_MondayStart(t *testing.T) {
	// Wednesday 2024-07-10
	anchor := time.Date(2024, time.July, 10, 15, 30, 0, 0, time.UTC)
	window := domain.WindowFor(domain.PeriodWeekly, anchor, time.UTC, time.Monday)

	assert.Equal(t, time.Date(2024, time.July, 8, 0, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC), window.End)
}

func TestWindowFor_Weekly_AnchorOnWeekStart(t *testing.T) {
	// Monday midnight stays the start of its own week.
	anchor := time.Date(2024, time.July, 8, 0, 0, 0, 0, time.UTC)
	window := domain.WindowFor(domain.PeriodWeekly, anchor, time.UTC, time.Monday)

	assert.Equal(t, time.Date(2024, time.July, 8, 0, 0, 0, 0, time.UTC), window.Start)
}

func TestWindowFor_Weekly_SundayStart(t *testing.T) {
	anchor := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)
	window := domain.WindowFor(domain.PeriodWeekly, anchor, time.UTC, time.Sunday)

	assert.Equal(t, time.Date(2024, time.July, 7, 0, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC), window.End)
}

func TestWindowFor_Monthly_DSTTransition(t *testing.T) {
	// March 2024 in New York spans the EST -> EDT switch, so the window is
	// one hour shorter than 31 calendar days of UTC.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	anchor := time.Date(2024, time.March, 15, 12, 0, 0, 0, loc)
	window := domain.WindowFor(domain.PeriodMonthly, anchor, loc, time.Monday)

	// Midnight EST is 05:00 UTC; midnight EDT is 04:00 UTC.
	assert.Equal(t, time.Date(2024, time.March, 1, 5, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, time.Date(2024, time.April, 1, 4, 0, 0, 0, time.UTC), window.End)
}

func TestWindowFor_Yearly(t *testing.T) {
	anchor := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	window := domain.WindowFor(domain.PeriodYearly, anchor, time.UTC, time.Monday)

	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), window.End)
}

func TestPeriodWindow_Contains_HalfOpen(t *testing.T) {
	window := domain.PeriodWindow{
		Start: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, window.Contains(window.Start), "start boundary is inclusive")
	assert.False(t, window.Contains(window.End), "end boundary is exclusive")
	assert.True(t, window.Contains(window.End.Add(-time.Nanosecond)))
	assert.False(t, window.Contains(window.Start.Add(-time.Nanosecond)))
}

func TestWindowFor_AdjacentWindowsShareBoundary(t *testing.T) {
	// A transaction at exactly local midnight belongs to the later window.
	june := domain.WindowFor(domain.PeriodMonthly, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), time.UTC, time.Monday)
	july := domain.WindowFor(domain.PeriodMonthly, time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC), time.UTC, time.Monday)

	boundary := june.End
	assert.Equal(t, boundary, july.Start)
	assert.False(t, june.Contains(boundary))
	assert.True(t, july.Contains(boundary))
}

func txnAt(amount string, occurredAt time.Time) domain.Transaction {
	return domain.Transaction{
		TransactionID: "txn-" + amount,
		UserID:        "user-1",
		Platform:      domain.PlatformUber,
		Amount:        decimal.RequireFromString(amount),
		OccurredAt:    occurredAt,
	}
}

func TestSummarize_Totals(t *testing.T) {
	window := domain.PeriodWindow{
		Start: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
	inside := time.Date(2024, time.July, 10, 12, 0, 0, 0, time.UTC)

	txns := []domain.CategorizedTransaction{
		{
			Transaction: txnAt("1200", inside),
			Assignment:  &domain.CategoryAssignment{Category: domain.CategoryEarnings, Method: domain.MethodAutomatic},
		},
		{
			Transaction: txnAt("-100", inside),
			Assignment:  &domain.CategoryAssignment{Category: domain.CategoryVehicle, Method: domain.MethodAutomatic},
		},
		{
			Transaction: txnAt("-50", inside),
			Assignment:  &domain.CategoryAssignment{Category: domain.CategoryMeals, Method: domain.MethodManualOverride},
		},
		{
			// No assignment: bucketed as Unclassified, excluded from deductions.
			Transaction: txnAt("-25", inside),
		},
	}

	summary := domain.Summarize("user-1", domain.PeriodMonthly, window, txns, inside)

	assert.True(t, summary.TotalEarnings.Equal(decimal.RequireFromString("1200")), "earnings: %s", summary.TotalEarnings)
	assert.True(t, summary.TotalDeductible.Equal(decimal.RequireFromString("150")), "deductible: %s", summary.TotalDeductible)
	assert.True(t, summary.CategoryTotals[domain.CategoryVehicle].Equal(decimal.RequireFromString("-100")))
	assert.True(t, summary.CategoryTotals[domain.CategoryMeals].Equal(decimal.RequireFromString("-50")))
	assert.True(t, summary.CategoryTotals[domain.CategoryUnclassified].Equal(decimal.RequireFromString("-25")))
	assert.True(t, summary.CategoryTotals[domain.CategoryEarnings].Equal(decimal.RequireFromString("1200")))
}

func TestSummarize_IgnoresTransactionsOutsideWindow(t *testing.T) {
	window := domain.PeriodWindow{
		Start: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
	}

	txns := []domain.CategorizedTransaction{
		{Transaction: txnAt("500", time.Date(2024, time.June, 30, 23, 59, 59, 0, time.UTC))},
		{Transaction: txnAt("300", window.End)},
	}

	summary := domain.Summarize("user-1", domain.PeriodMonthly, window, txns, time.Now())

	assert.True(t, summary.TotalEarnings.IsZero())
	assert.Empty(t, summary.CategoryTotals)
}

func TestSummarize_NonDeductibleExcludedFromTotal(t *testing.T) {
	window := domain.PeriodWindow{
		Start: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
	inside := window.Start.Add(24 * time.Hour)

	txns := []domain.CategorizedTransaction{
		{
			Transaction: txnAt("-40", inside),
			Assignment:  &domain.CategoryAssignment{Category: domain.CategoryOtherNonDeductible, Method: domain.MethodAutomatic},
		},
	}

	summary := domain.Summarize("user-1", domain.PeriodMonthly, window, txns, time.Now())

	assert.True(t, summary.TotalDeductible.IsZero())
	assert.True(t, summary.CategoryTotals[domain.CategoryOtherNonDeductible].Equal(decimal.RequireFromString("-40")))
}
