package pgsql

import (
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires all postgres-backed repositories.
func NewRepositoryProvider(db *pgxpool.Pool) portsrepo.RepositoryProvider {
	// The transaction repository combines content updates with assignment
	// invalidation atomically, so it runs assignment writes inside its own
	// database transactions.
	assignmentRepo := newAssignmentRepository(db)
	return portsrepo.RepositoryProvider{
		TransactionRepo: newTransactionRepository(db, assignmentRepo),
		AssignmentRepo:  assignmentRepo,
		SummaryRepo:     newSummaryRepository(db),
		EstimateRepo:    newEstimateRepository(db),
	}
}
