package repositories

import (
	"context"
	"time"

	"github.com/gigworks/gigtax/internal/core/domain"
)

// Unlocker releases a held summary lock.
type Unlocker interface {
	Unlock(ctx context.Context) error
}

// SummaryLock serializes the replace-atomically write of one summary key.
// Aggregation itself is side-effect-free; only the final swap needs the
// single-writer-per-key discipline.
type SummaryLock interface {
	// Lock blocks until the key is acquired or ctx is done.
	Lock(ctx context.Context, key string) (Unlocker, error)
}

// ReportCache is a read-through cache for computed summaries. Misses return
// (nil, nil); the cache is advisory and never the source of truth.
type ReportCache interface {
	GetSummary(ctx context.Context, key string) (*domain.PeriodSummary, error)
	PutSummary(ctx context.Context, key string, summary domain.PeriodSummary, ttl time.Duration) error

	// InvalidateUser drops every cached summary for the user, called after
	// ingestion writes new or corrected transactions.
	InvalidateUser(ctx context.Context, userID string) error
}
