package repositories

import (
	"context"

	"github.com/gigworks/gigtax/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AssignmentReader defines read operations for category assignments
type AssignmentReader interface {
	// FindActiveAssignment retrieves the single active assignment for a
	// transaction, or apperrors.ErrNotFound when none exists.
	FindActiveAssignment(ctx context.Context, transactionID string) (*domain.CategoryAssignment, error)
}

// AssignmentWriter defines write operations for category assignments
type AssignmentWriter interface {
	// SaveAssignment upserts an assignment under the engine's conflict
	// rules: a ManualOverride always wins; between Automatic assignments the
	// later AssignedAt wins. A write that loses the conflict is a no-op, not
	// an error.
	SaveAssignment(ctx context.Context, assignment domain.CategoryAssignment) error

	// DeleteAssignment removes the active assignment for a transaction.
	DeleteAssignment(ctx context.Context, transactionID string) error
}

// AssignmentRepositoryFacade combines all assignment repository interfaces
type AssignmentRepositoryFacade interface {
	AssignmentReader
	AssignmentWriter
}

// AssignmentRepositoryWithTx extends the facade with writes that run inside a
// caller-owned database transaction, for repositories that combine a content
// update with its assignment consequence atomically.
type AssignmentRepositoryWithTx interface {
	AssignmentRepositoryFacade

	// DeleteAssignmentInTx removes the assignment within tx. Zero affected
	// rows is not an error: the desired end state already holds.
	DeleteAssignmentInTx(ctx context.Context, tx pgx.Tx, transactionID string) error

	// MarkAssignmentStaleInTx sets the stale review flag within tx. Zero
	// affected rows is not an error.
	MarkAssignmentStaleInTx(ctx context.Context, tx pgx.Tx, transactionID string, stale bool) error
}
