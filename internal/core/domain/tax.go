package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxEstimate is the engine's liability figure for one user and tax year.
// It is a pure function of the yearly PeriodSummary and the bracket table
// identified by RuleVersion, so recomputing with the same inputs always
// reproduces the same estimate.
type TaxEstimate struct {
	UserID                 string          `json:"userID"`
	TaxYear                int             `json:"taxYear"`
	EstimatedTaxableIncome decimal.Decimal `json:"estimatedTaxableIncome"`
	EstimatedTaxOwed       decimal.Decimal `json:"estimatedTaxOwed"`
	EffectiveRate          decimal.Decimal `json:"effectiveRate"`
	RuleVersion            string          `json:"ruleVersion"`
	ComputedAt             time.Time       `json:"computedAt"`
}
