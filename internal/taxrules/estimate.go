package taxrules

import (
	"time"

	"github.com/gigworks/gigtax/internal/core/domain"
	"github.com/shopspring/decimal"
)

// minorUnitPlaces is the rounding precision of the reporting currency.
const minorUnitPlaces = 2

// Estimate derives a tax estimate from a yearly period summary and one
// bracket table. It is a pure function: identical summary figures and table
// version always produce identical monetary outputs. All arithmetic stays in
// decimal form; rounding to the minor unit happens exactly once, at the end.
func Estimate(userID string, summary domain.PeriodSummary, table *Table, now time.Time) domain.TaxEstimate {
	taxable := summary.TotalEarnings.
		Sub(summary.TotalDeductible).
		Sub(table.StandardDeduction)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	owed := progressiveTax(taxable, table.Brackets)
	owed = owed.Add(taxable.Mul(table.SelfEmploymentRate))

	taxable = taxable.Round(minorUnitPlaces)
	owed = owed.Round(minorUnitPlaces)

	effectiveRate := decimal.Zero
	if taxable.IsPositive() {
		effectiveRate = owed.DivRound(taxable, 4)
	}

	return domain.TaxEstimate{
		UserID:                 userID,
		TaxYear:                table.Year,
		EstimatedTaxableIncome: taxable,
		EstimatedTaxOwed:       owed,
		EffectiveRate:          effectiveRate,
		RuleVersion:            table.Version,
		ComputedAt:             now,
	}
}

// progressiveTax walks the bands in order, taxing the slice of income each
// band covers at that band's rate.
func progressiveTax(taxable decimal.Decimal, brackets []Bracket) decimal.Decimal {
	tax := decimal.Zero
	lower := decimal.Zero
	for _, bracket := range brackets {
		if taxable.LessThanOrEqual(lower) {
			break
		}
		upper := taxable
		if bracket.UpTo != nil && bracket.UpTo.LessThan(taxable) {
			upper = *bracket.UpTo
		}
		tax = tax.Add(upper.Sub(lower).Mul(bracket.Rate))
		lower = upper
	}
	return tax
}
