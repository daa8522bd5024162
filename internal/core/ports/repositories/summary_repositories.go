package repositories

import (
	"context"

	"github.com/gigworks/gigtax/internal/core/domain"
)

// SummaryReader defines read operations for period summaries
type SummaryReader interface {
	// FindSummary retrieves the stored summary for the exact
	// (user, kind, window) key, or apperrors.ErrNotFound.
	FindSummary(ctx context.Context, userID string, kind domain.PeriodKind, window domain.PeriodWindow) (*domain.PeriodSummary, error)
}

// SummaryWriter defines write operations for period summaries
type SummaryWriter interface {
	// ReplaceSummary swaps in a freshly recomputed summary for its key in a
	// single statement. Summaries are never partially mutated.
	ReplaceSummary(ctx context.Context, summary domain.PeriodSummary) error
}

// SummaryRepositoryFacade combines all summary repository interfaces
type SummaryRepositoryFacade interface {
	SummaryReader
	SummaryWriter
}
