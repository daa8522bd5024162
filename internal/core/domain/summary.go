package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodKind selects the reporting window granularity.
type PeriodKind string

const (
	PeriodWeekly  PeriodKind = "WEEKLY"
	PeriodMonthly PeriodKind = "MONTHLY"
	PeriodYearly  PeriodKind = "YEARLY"
)

// IsValid reports whether k is a supported period kind.
func (k PeriodKind) IsValid() bool {
	return k == PeriodWeekly || k == PeriodMonthly || k == PeriodYearly
}

// PeriodWindow is a half-open interval [Start, End) holding UTC-normalized
// instants. Boundaries are computed by calendar rules in the user's timezone,
// so the instants are DST-correct even though they are stored in UTC.
type PeriodWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the half-open window.
func (w PeriodWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowFor computes the period window of the given kind containing anchor.
// Weekly windows begin on weekStart; monthly and yearly windows follow the
// calendar. Boundaries are local midnights in loc, returned as UTC instants.
func WindowFor(kind PeriodKind, anchor time.Time, loc *time.Location, weekStart time.Weekday) PeriodWindow {
	local := anchor.In(loc)
	var start, end time.Time
	switch kind {
	case PeriodWeekly:
		back := (int(local.Weekday()) - int(weekStart) + 7) % 7
		start = time.Date(local.Year(), local.Month(), local.Day()-back, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	case PeriodYearly:
		start = time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0)
	}
	return PeriodWindow{Start: start.UTC(), End: end.UTC()}
}

// PeriodSummary is a derived roll-up of one user's transactions and active
// category assignments over a window. It is never the source of truth; every
// aggregation run recomputes it in full and replaces the previous one.
type PeriodSummary struct {
	UserID          string                       `json:"userID"`
	PeriodKind      PeriodKind                   `json:"periodKind"`
	Window          PeriodWindow                 `json:"window"`
	CategoryTotals  map[Category]decimal.Decimal `json:"categoryTotals"` // Signed sums per category
	TotalEarnings   decimal.Decimal              `json:"totalEarnings"`
	TotalDeductible decimal.Decimal              `json:"totalDeductible"` // Positive magnitude
	GeneratedAt     time.Time                    `json:"generatedAt"`
}

// Summarize folds categorized transactions into a PeriodSummary. Only
// transactions whose OccurredAt falls inside the window contribute.
// Unclassified and non-deductible amounts are bucketed but excluded from
// TotalDeductible.
func Summarize(userID string, kind PeriodKind, window PeriodWindow, txns []CategorizedTransaction, now time.Time) PeriodSummary {
	summary := PeriodSummary{
		UserID:          userID,
		PeriodKind:      kind,
		Window:          window,
		CategoryTotals:  make(map[Category]decimal.Decimal),
		TotalEarnings:   decimal.Zero,
		TotalDeductible: decimal.Zero,
		GeneratedAt:     now,
	}
	for _, ct := range txns {
		if !window.Contains(ct.Transaction.OccurredAt) {
			continue
		}
		category := ct.EffectiveCategory()
		summary.CategoryTotals[category] = summary.CategoryTotals[category].Add(ct.Transaction.Amount)
		if ct.Transaction.IsEarning() {
			summary.TotalEarnings = summary.TotalEarnings.Add(ct.Transaction.Amount)
			continue
		}
		if category.Deductible() {
			summary.TotalDeductible = summary.TotalDeductible.Add(ct.Transaction.Amount.Abs())
		}
	}
	return summary
}
