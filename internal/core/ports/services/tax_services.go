package services

import (
	"context"

	"github.com/gigworks/gigtax/internal/core/domain"
)

// TaxService derives tax estimates from aggregated figures.
type TaxService interface {
	// EstimateTax aggregates the user's yearly summary, applies the bracket
	// table registered for taxYear and persists the resulting estimate.
	// An unregistered year yields apperrors.ErrUnsupportedTaxYear and no
	// estimate.
	EstimateTax(ctx context.Context, userID string, taxYear int) (*domain.TaxEstimate, error)

	// LatestEstimate returns the estimate persisted by the most recent
	// EstimateTax run for the year, without recomputing it.
	// apperrors.ErrNotFound when none has been computed.
	LatestEstimate(ctx context.Context, userID string, taxYear int) (*domain.TaxEstimate, error)
}
