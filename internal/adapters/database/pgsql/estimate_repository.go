package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// estimateRepository implements the EstimateRepositoryFacade interface
type estimateRepository struct {
	BaseRepository
}

func newEstimateRepository(db *pgxpool.Pool) portsrepo.EstimateRepositoryFacade {
	return &estimateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// FindEstimate retrieves the stored estimate for a user and tax year.
func (r *estimateRepository) FindEstimate(ctx context.Context, userID string, taxYear int) (*domain.TaxEstimate, error) {
	query := `
		SELECT user_id, tax_year, estimated_taxable_income, estimated_tax_owed,
			effective_rate, rule_version, computed_at
		FROM tax_estimates
		WHERE user_id = $1 AND tax_year = $2
	`
	row := r.Pool.QueryRow(ctx, query, userID, taxYear)

	var estimate domain.TaxEstimate
	err := row.Scan(
		&estimate.UserID,
		&estimate.TaxYear,
		&estimate.EstimatedTaxableIncome,
		&estimate.EstimatedTaxOwed,
		&estimate.EffectiveRate,
		&estimate.RuleVersion,
		&estimate.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning tax estimate: %w", err)
	}
	return &estimate, nil
}

// SaveEstimate upserts the estimate for its (user, tax year) key.
func (r *estimateRepository) SaveEstimate(ctx context.Context, estimate domain.TaxEstimate) error {
	query := `
		INSERT INTO tax_estimates (user_id, tax_year, estimated_taxable_income,
			estimated_tax_owed, effective_rate, rule_version, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, tax_year) DO UPDATE
		SET estimated_taxable_income = EXCLUDED.estimated_taxable_income,
			estimated_tax_owed = EXCLUDED.estimated_tax_owed,
			effective_rate = EXCLUDED.effective_rate,
			rule_version = EXCLUDED.rule_version,
			computed_at = EXCLUDED.computed_at
	`
	_, err := r.Pool.Exec(ctx, query,
		estimate.UserID,
		estimate.TaxYear,
		estimate.EstimatedTaxableIncome,
		estimate.EstimatedTaxOwed,
		estimate.EffectiveRate,
		estimate.RuleVersion,
		estimate.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving tax estimate: %w", err)
	}
	return nil
}
