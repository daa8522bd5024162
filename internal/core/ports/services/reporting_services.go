package services

import (
	"context"
	"time"

	"github.com/gigworks/gigtax/internal/core/domain"
)

// ReportingService rolls transactions and assignments up into period summaries.
type ReportingService interface {
	// Aggregate recomputes the summary for the window of the given kind
	// containing anchor, bucketed by calendar rules in loc (nil = the
	// configured default timezone). The recompute always runs over the full
	// window; the stored summary is replaced atomically. Concurrent calls
	// for the same key are idempotent.
	Aggregate(ctx context.Context, userID string, kind domain.PeriodKind, anchor time.Time, loc *time.Location) (*domain.PeriodSummary, error)

	// LastComputed returns the stored summary from the most recent recompute
	// of the window containing anchor, without recomputing it.
	// apperrors.ErrNotFound when the window has never been aggregated.
	LastComputed(ctx context.Context, userID string, kind domain.PeriodKind, anchor time.Time, loc *time.Location) (*domain.PeriodSummary, error)
}
