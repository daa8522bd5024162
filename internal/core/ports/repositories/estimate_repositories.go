package repositories

import (
	"context"

	"github.com/gigworks/gigtax/internal/core/domain"
)

// EstimateReader defines read operations for tax estimates
type EstimateReader interface {
	// FindEstimate retrieves the stored estimate for a user and tax year,
	// or apperrors.ErrNotFound.
	FindEstimate(ctx context.Context, userID string, taxYear int) (*domain.TaxEstimate, error)
}

// EstimateWriter defines write operations for tax estimates
type EstimateWriter interface {
	// SaveEstimate upserts the estimate for its (user, tax year) key.
	SaveEstimate(ctx context.Context, estimate domain.TaxEstimate) error
}

// EstimateRepositoryFacade combines all estimate repository interfaces
type EstimateRepositoryFacade interface {
	EstimateReader
	EstimateWriter
}
