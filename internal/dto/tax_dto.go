package dto

import (
	"time"

	"github.com/gigworks/gigtax/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TaxEstimateResponse represents a tax estimate in API responses.
type TaxEstimateResponse struct {
	UserID                 string          `json:"userID"`
	TaxYear                int             `json:"taxYear"`
	EstimatedTaxableIncome decimal.Decimal `json:"estimatedTaxableIncome"`
	EstimatedTaxOwed       decimal.Decimal `json:"estimatedTaxOwed"`
	EffectiveRate          decimal.Decimal `json:"effectiveRate"`
	RuleVersion            string          `json:"ruleVersion"`
	ComputedAt             string          `json:"computedAt"`
}

// ToTaxEstimateResponse converts a domain estimate to a DTO response.
func ToTaxEstimateResponse(e domain.TaxEstimate) TaxEstimateResponse {
	return TaxEstimateResponse{
		UserID:                 e.UserID,
		TaxYear:                e.TaxYear,
		EstimatedTaxableIncome: e.EstimatedTaxableIncome,
		EstimatedTaxOwed:       e.EstimatedTaxOwed,
		EffectiveRate:          e.EffectiveRate,
		RuleVersion:            e.RuleVersion,
		ComputedAt:             e.ComputedAt.Format(time.RFC3339),
	}
}
