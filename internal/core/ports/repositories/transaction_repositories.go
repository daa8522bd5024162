package repositories

import (
	"context"

	"github.com/gigworks/gigtax/internal/core/domain"
)

// TransactionReader defines read operations for canonical transactions
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionBySourceRef retrieves the transaction identified by the
	// idempotency key (platform, source_ref), or apperrors.ErrNotFound.
	FindTransactionBySourceRef(ctx context.Context, platform domain.Platform, sourceRef string) (*domain.Transaction, error)

	// ListCategorizedByUserAndWindow retrieves every transaction for the user
	// whose OccurredAt falls inside the half-open window, joined with its
	// active category assignment when one exists.
	ListCategorizedByUserAndWindow(ctx context.Context, userID string, window domain.PeriodWindow) ([]domain.CategorizedTransaction, error)
}

// TransactionWriter defines write operations for canonical transactions
type TransactionWriter interface {
	// SaveTransaction persists a newly normalized transaction.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction replaces the mutable fields (amount, description,
	// occurred_at) of an existing transaction, keyed by TransactionID.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransactionDroppingAssignment replaces the mutable fields and
	// removes the transaction's assignment in one database transaction. The
	// content update and the invalidation commit or roll back together, so a
	// failure never leaves an automatic decision active against new content.
	UpdateTransactionDroppingAssignment(ctx context.Context, txn domain.Transaction) error

	// UpdateTransactionFlaggingOverride replaces the mutable fields and sets
	// the stale review flag on the manual override in one database transaction.
	UpdateTransactionFlaggingOverride(ctx context.Context, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
