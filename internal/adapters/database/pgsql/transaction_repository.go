package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// transactionRepository implements the TransactionRepositoryFacade interface
type transactionRepository struct {
	BaseRepository
	assignmentRepo portsrepo.AssignmentRepositoryWithTx
}

func newTransactionRepository(db *pgxpool.Pool, assignmentRepo portsrepo.AssignmentRepositoryWithTx) portsrepo.TransactionRepositoryFacade {
	return &transactionRepository{
		BaseRepository: BaseRepository{Pool: db},
		assignmentRepo: assignmentRepo,
	}
}

const transactionColumns = `transaction_id, user_id, platform, amount, description,
	occurred_at, ingested_at, source_ref, created_at, created_by, last_updated_at, last_updated_by`

// FindTransactionByID retrieves a transaction by its unique identifier.
func (r *transactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	return r.scanOne(ctx, query, transactionID)
}

// FindTransactionBySourceRef retrieves the transaction identified by the
// idempotency key (platform, source_ref).
func (r *transactionRepository) FindTransactionBySourceRef(ctx context.Context, platform domain.Platform, sourceRef string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE platform = $1 AND source_ref = $2`
	return r.scanOne(ctx, query, string(platform), sourceRef)
}

func (r *transactionRepository) scanOne(ctx context.Context, query string, args ...any) (*domain.Transaction, error) {
	row := r.Pool.QueryRow(ctx, query, args...)

	var txn domain.Transaction
	var platform string
	err := row.Scan(
		&txn.TransactionID,
		&txn.UserID,
		&platform,
		&txn.Amount,
		&txn.Description,
		&txn.OccurredAt,
		&txn.IngestedAt,
		&txn.SourceRef,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning transaction: %w", err)
	}
	txn.Platform = domain.Platform(platform)
	return &txn, nil
}

// SaveTransaction persists a newly normalized transaction.
func (r *transactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.Pool.Exec(ctx, query,
		txn.TransactionID,
		txn.UserID,
		string(txn.Platform),
		txn.Amount,
		txn.Description,
		txn.OccurredAt,
		txn.IngestedAt,
		txn.SourceRef,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction %s/%s already exists: %w", txn.Platform, txn.SourceRef, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("error saving transaction: %w", err)
	}
	return nil
}

// UpdateTransaction replaces the mutable fields of an existing transaction.
func (r *transactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	return updateTransaction(ctx, r.Pool, txn)
}

func updateTransaction(ctx context.Context, db execer, txn domain.Transaction) error {
	query := `
		UPDATE transactions
		SET amount = $2, description = $3, occurred_at = $4, ingested_at = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE transaction_id = $1
	`
	tag, err := db.Exec(ctx, query,
		txn.TransactionID,
		txn.Amount,
		txn.Description,
		txn.OccurredAt,
		txn.IngestedAt,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("error updating transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateTransactionDroppingAssignment replaces the mutable fields and removes
// the assignment within one database transaction, so the old automatic
// decision can never survive a committed content change.
func (r *transactionRepository) UpdateTransactionDroppingAssignment(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if the transaction is committed successfully
	defer r.Rollback(ctx, tx)

	if err := updateTransaction(ctx, tx, txn); err != nil {
		return err
	}
	if err := r.assignmentRepo.DeleteAssignmentInTx(ctx, tx, txn.TransactionID); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdateTransactionFlaggingOverride replaces the mutable fields and sets the
// stale review flag on the manual override within one database transaction.
func (r *transactionRepository) UpdateTransactionFlaggingOverride(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if the transaction is committed successfully
	defer r.Rollback(ctx, tx)

	if err := updateTransaction(ctx, tx, txn); err != nil {
		return err
	}
	if err := r.assignmentRepo.MarkAssignmentStaleInTx(ctx, tx, txn.TransactionID, true); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// ListCategorizedByUserAndWindow retrieves every transaction in the half-open
// window joined with its active assignment when one exists.
func (r *transactionRepository) ListCategorizedByUserAndWindow(ctx context.Context, userID string, window domain.PeriodWindow) ([]domain.CategorizedTransaction, error) {
	query := `
		SELECT
			t.transaction_id, t.user_id, t.platform, t.amount, t.description,
			t.occurred_at, t.ingested_at, t.source_ref,
			t.created_at, t.created_by, t.last_updated_at, t.last_updated_by,
			a.category, a.confidence, a.method, a.stale, a.assigned_at
		FROM transactions t
		LEFT JOIN category_assignments a ON a.transaction_id = t.transaction_id
		WHERE t.user_id = $1
			AND t.occurred_at >= $2
			AND t.occurred_at < $3
		ORDER BY t.occurred_at, t.transaction_id
	`
	rows, err := r.Pool.Query(ctx, query, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for window: %w", err)
	}
	defer rows.Close()

	result := []domain.CategorizedTransaction{}
	for rows.Next() {
		var (
			ct         domain.CategorizedTransaction
			platform   string
			category   *string
			confidence *float64
			method     *string
			stale      *bool
			assignedAt *time.Time
		)
		if err := rows.Scan(
			&ct.Transaction.TransactionID,
			&ct.Transaction.UserID,
			&platform,
			&ct.Transaction.Amount,
			&ct.Transaction.Description,
			&ct.Transaction.OccurredAt,
			&ct.Transaction.IngestedAt,
			&ct.Transaction.SourceRef,
			&ct.Transaction.CreatedAt,
			&ct.Transaction.CreatedBy,
			&ct.Transaction.LastUpdatedAt,
			&ct.Transaction.LastUpdatedBy,
			&category,
			&confidence,
			&method,
			&stale,
			&assignedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning categorized transaction: %w", err)
		}
		ct.Transaction.Platform = domain.Platform(platform)
		if category != nil {
			ct.Assignment = &domain.CategoryAssignment{
				TransactionID: ct.Transaction.TransactionID,
				Category:      domain.Category(*category),
				Confidence:    *confidence,
				Method:        domain.AssignmentMethod(*method),
				Stale:         *stale,
				AssignedAt:    *assignedAt,
			}
		}
		result = append(result, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categorized transactions: %w", err)
	}
	return result, nil
}
