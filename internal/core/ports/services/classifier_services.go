package services

import (
	"context"

	"github.com/gigworks/gigtax/internal/core/domain"
)

// ModelScorer is the statistical classification stage: it scores a free-text
// description against the expense category set and returns the best category
// with the model's confidence in [0, 1]. Implementations may block on model
// inference and must honor context cancellation; callers bound the call with
// a timeout and degrade to rule-stage-only on failure.
type ModelScorer interface {
	Score(ctx context.Context, description string) (domain.Category, float64, error)
}

// ClassifierSvcFacade assigns tax categories to transactions.
type ClassifierSvcFacade interface {
	// Classify produces and persists the active assignment for a
	// transaction. Earnings bypass to the Earnings pseudo-category; an
	// existing manual override short-circuits both stages and is returned
	// unchanged.
	Classify(ctx context.Context, txn domain.Transaction) (*domain.CategoryAssignment, error)

	// Override applies a manual category decision for a transaction. It
	// supersedes any automatic assignment and wins over later automatic
	// re-classification until explicitly cleared.
	Override(ctx context.Context, transactionID string, category domain.Category) (*domain.CategoryAssignment, error)

	// ClearOverride removes a manual override and re-runs automatic
	// classification for the transaction.
	ClearOverride(ctx context.Context, transactionID string) (*domain.CategoryAssignment, error)
}
