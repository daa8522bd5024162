package dto

import (
	"time"

	"github.com/gigworks/gigtax/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PeriodSummaryResponse represents one period roll-up in API responses.
type PeriodSummaryResponse struct {
	UserID          string                     `json:"userID"`
	PeriodKind      string                     `json:"periodKind"`
	PeriodStart     string                     `json:"periodStart"`
	PeriodEnd       string                     `json:"periodEnd"`
	CategoryTotals  map[string]decimal.Decimal `json:"categoryTotals"`
	TotalEarnings   decimal.Decimal            `json:"totalEarnings"`
	TotalDeductible decimal.Decimal            `json:"totalDeductible"`
	GeneratedAt     string                     `json:"generatedAt"`
}

// ToPeriodSummaryResponse converts a domain summary to a DTO response.
func ToPeriodSummaryResponse(s domain.PeriodSummary) PeriodSummaryResponse {
	totals := make(map[string]decimal.Decimal, len(s.CategoryTotals))
	for category, amount := range s.CategoryTotals {
		totals[string(category)] = amount
	}
	return PeriodSummaryResponse{
		UserID:          s.UserID,
		PeriodKind:      string(s.PeriodKind),
		PeriodStart:     s.Window.Start.Format(time.RFC3339),
		PeriodEnd:       s.Window.End.Format(time.RFC3339),
		CategoryTotals:  totals,
		TotalEarnings:   s.TotalEarnings,
		TotalDeductible: s.TotalDeductible,
		GeneratedAt:     s.GeneratedAt.Format(time.RFC3339),
	}
}
