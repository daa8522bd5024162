package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// summaryRepository implements the SummaryRepositoryFacade interface
type summaryRepository struct {
	BaseRepository
}

func newSummaryRepository(db *pgxpool.Pool) portsrepo.SummaryRepositoryFacade {
	return &summaryRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// FindSummary retrieves the stored summary for the exact (user, kind, window) key.
func (r *summaryRepository) FindSummary(ctx context.Context, userID string, kind domain.PeriodKind, window domain.PeriodWindow) (*domain.PeriodSummary, error) {
	query := `
		SELECT user_id, period_kind, period_start, period_end,
			category_totals, total_earnings, total_deductible, generated_at
		FROM period_summaries
		WHERE user_id = $1 AND period_kind = $2 AND period_start = $3 AND period_end = $4
	`
	row := r.Pool.QueryRow(ctx, query, userID, string(kind), window.Start, window.End)

	var summary domain.PeriodSummary
	var periodKind string
	var totalsJSON []byte
	err := row.Scan(
		&summary.UserID,
		&periodKind,
		&summary.Window.Start,
		&summary.Window.End,
		&totalsJSON,
		&summary.TotalEarnings,
		&summary.TotalDeductible,
		&summary.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning period summary: %w", err)
	}
	summary.PeriodKind = domain.PeriodKind(periodKind)

	totals := map[domain.Category]decimal.Decimal{}
	if err := json.Unmarshal(totalsJSON, &totals); err != nil {
		return nil, fmt.Errorf("error decoding category totals: %w", err)
	}
	summary.CategoryTotals = totals
	return &summary, nil
}

// ReplaceSummary swaps in a freshly recomputed summary in a single upsert, so
// readers never observe a partially written row.
func (r *summaryRepository) ReplaceSummary(ctx context.Context, summary domain.PeriodSummary) error {
	totalsJSON, err := json.Marshal(summary.CategoryTotals)
	if err != nil {
		return fmt.Errorf("error encoding category totals: %w", err)
	}

	query := `
		INSERT INTO period_summaries (user_id, period_kind, period_start, period_end,
			category_totals, total_earnings, total_deductible, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, period_kind, period_start, period_end) DO UPDATE
		SET category_totals = EXCLUDED.category_totals,
			total_earnings = EXCLUDED.total_earnings,
			total_deductible = EXCLUDED.total_deductible,
			generated_at = EXCLUDED.generated_at
	`
	_, err = r.Pool.Exec(ctx, query,
		summary.UserID,
		string(summary.PeriodKind),
		summary.Window.Start,
		summary.Window.End,
		totalsJSON,
		summary.TotalEarnings,
		summary.TotalDeductible,
		summary.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("error replacing period summary: %w", err)
	}
	return nil
}
