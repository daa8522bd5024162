package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// assignmentRepository implements the AssignmentRepositoryWithTx interface
type assignmentRepository struct {
	BaseRepository
}

func newAssignmentRepository(db *pgxpool.Pool) portsrepo.AssignmentRepositoryWithTx {
	return &assignmentRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// Ensure assignmentRepository implements the AssignmentRepositoryWithTx interface
var _ portsrepo.AssignmentRepositoryWithTx = (*assignmentRepository)(nil)

// FindActiveAssignment retrieves the active assignment for a transaction.
func (r *assignmentRepository) FindActiveAssignment(ctx context.Context, transactionID string) (*domain.CategoryAssignment, error) {
	query := `
		SELECT transaction_id, category, confidence, method, stale, assigned_at
		FROM category_assignments
		WHERE transaction_id = $1
	`
	row := r.Pool.QueryRow(ctx, query, transactionID)

	var assignment domain.CategoryAssignment
	var category, method string
	err := row.Scan(
		&assignment.TransactionID,
		&category,
		&assignment.Confidence,
		&method,
		&assignment.Stale,
		&assignment.AssignedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning assignment: %w", err)
	}
	assignment.Category = domain.Category(category)
	assignment.Method = domain.AssignmentMethod(method)
	return &assignment, nil
}

// SaveAssignment upserts an assignment. The conflict clause enforces the
// precedence rules in one statement: a manual override always replaces the
// stored row, and between automatic assignments the later assigned_at wins.
// A losing write updates zero rows and returns nil.
func (r *assignmentRepository) SaveAssignment(ctx context.Context, assignment domain.CategoryAssignment) error {
	query := `
		INSERT INTO category_assignments (transaction_id, category, confidence, method, stale, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (transaction_id) DO UPDATE
		SET category = EXCLUDED.category,
			confidence = EXCLUDED.confidence,
			method = EXCLUDED.method,
			stale = EXCLUDED.stale,
			assigned_at = EXCLUDED.assigned_at
		WHERE EXCLUDED.method = 'MANUAL_OVERRIDE'
			OR (category_assignments.method <> 'MANUAL_OVERRIDE'
				AND EXCLUDED.assigned_at >= category_assignments.assigned_at)
	`
	_, err := r.Pool.Exec(ctx, query,
		assignment.TransactionID,
		string(assignment.Category),
		assignment.Confidence,
		string(assignment.Method),
		assignment.Stale,
		assignment.AssignedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving assignment: %w", err)
	}
	return nil
}

// DeleteAssignment removes the active assignment for a transaction.
func (r *assignmentRepository) DeleteAssignment(ctx context.Context, transactionID string) error {
	tag, err := deleteAssignment(ctx, r.Pool, transactionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAssignmentInTx removes the assignment within a caller-owned database
// transaction. Zero affected rows is not an error; a concurrent writer may
// already have removed the row, and the desired end state holds either way.
func (r *assignmentRepository) DeleteAssignmentInTx(ctx context.Context, tx pgx.Tx, transactionID string) error {
	_, err := deleteAssignment(ctx, tx, transactionID)
	return err
}

func deleteAssignment(ctx context.Context, db execer, transactionID string) (pgconn.CommandTag, error) {
	query := `DELETE FROM category_assignments WHERE transaction_id = $1`
	tag, err := db.Exec(ctx, query, transactionID)
	if err != nil {
		return tag, fmt.Errorf("error deleting assignment: %w", err)
	}
	return tag, nil
}

// MarkAssignmentStaleInTx sets the stale review flag within a caller-owned
// database transaction. Zero affected rows is not an error.
func (r *assignmentRepository) MarkAssignmentStaleInTx(ctx context.Context, tx pgx.Tx, transactionID string, stale bool) error {
	return markAssignmentStale(ctx, tx, transactionID, stale)
}

func markAssignmentStale(ctx context.Context, db execer, transactionID string, stale bool) error {
	query := `UPDATE category_assignments SET stale = $2 WHERE transaction_id = $1`
	if _, err := db.Exec(ctx, query, transactionID, stale); err != nil {
		return fmt.Errorf("error marking assignment stale: %w", err)
	}
	return nil
}
