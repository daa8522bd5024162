package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
)

const defaultSummaryCacheTTL = 5 * time.Minute

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	txnRepo     portsrepo.TransactionReader
	summaryRepo portsrepo.SummaryRepositoryFacade
	lock        portsrepo.SummaryLock
	cache       portsrepo.ReportCache
	cacheTTL    time.Duration
	defaultLoc  *time.Location
	weekStart   time.Weekday
	now         func() time.Time
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithSummaryLock replaces the in-process keyed lock, e.g. with the
// redis-backed one when aggregation runs on several instances.
func WithSummaryLock(lock portsrepo.SummaryLock) ReportingServiceOption {
	return func(s *reportingService) {
		s.lock = lock
	}
}

// WithReportCache enables the read-through summary cache.
func WithReportCache(cache portsrepo.ReportCache, ttl time.Duration) ReportingServiceOption {
	return func(s *reportingService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithDefaultTimezone sets the timezone used when callers pass none.
func WithDefaultTimezone(loc *time.Location) ReportingServiceOption {
	return func(s *reportingService) {
		s.defaultLoc = loc
	}
}

// WithWeekStart sets the weekday weekly windows begin on.
func WithWeekStart(weekday time.Weekday) ReportingServiceOption {
	return func(s *reportingService) {
		s.weekStart = weekday
	}
}

// WithReportingClock overrides the time source, mainly for tests.
func WithReportingClock(now func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.now = now
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(
	txnRepo portsrepo.TransactionReader,
	summaryRepo portsrepo.SummaryRepositoryFacade,
	options ...ReportingServiceOption,
) portssvc.ReportingService {
	svc := &reportingService{
		txnRepo:     txnRepo,
		summaryRepo: summaryRepo,
		lock:        NewKeyedMutex(),
		cacheTTL:    defaultSummaryCacheTTL,
		defaultLoc:  time.UTC,
		weekStart:   time.Monday,
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// Aggregate recomputes the period summary containing anchor from the full
// set of transactions and active assignments in the window. The computation
// is side-effect-free until the final replace-atomically write, which is the
// only step serialized per key.
func (s *reportingService) Aggregate(ctx context.Context, userID string, kind domain.PeriodKind, anchor time.Time, loc *time.Location) (*domain.PeriodSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", apperrors.ErrValidation)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown period kind %q: %w", kind, apperrors.ErrValidation)
	}
	if loc == nil {
		loc = s.defaultLoc
	}

	window := domain.WindowFor(kind, anchor, loc, s.weekStart)
	key := summaryKey(userID, kind, window)

	if s.cache != nil {
		cached, err := s.cache.GetSummary(ctx, key)
		if err != nil {
			s.LogWarn(ctx, "Report cache read failed, recomputing",
				slog.String("key", key), slog.String("error", err.Error()))
		} else if cached != nil {
			return cached, nil
		}
	}

	txns, err := s.txnRepo.ListCategorizedByUserAndWindow(ctx, userID, window)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions for aggregation",
			slog.String("user_id", userID),
			slog.String("period_kind", string(kind)))
		return nil, fmt.Errorf("failed to load transactions for window: %w", err)
	}

	summary := domain.Summarize(userID, kind, window, txns, s.now().UTC())

	// Only the swap needs single-writer discipline; a failed write leaves
	// the previous summary intact.
	unlocker, err := s.lock.Lock(ctx, "summary:"+key)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire summary lock: %w", err)
	}
	defer func() {
		if err := unlocker.Unlock(ctx); err != nil {
			s.LogWarn(ctx, "Failed to release summary lock",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}()

	if err := s.summaryRepo.ReplaceSummary(ctx, summary); err != nil {
		s.LogError(ctx, err, "Failed to replace period summary",
			slog.String("user_id", userID),
			slog.String("period_kind", string(kind)))
		return nil, fmt.Errorf("failed to replace period summary: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.PutSummary(ctx, key, summary, s.cacheTTL); err != nil {
			s.LogWarn(ctx, "Failed to cache period summary",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	s.LogInfo(ctx, "Period summary recomputed",
		slog.String("user_id", userID),
		slog.String("period_kind", string(kind)),
		slog.String("period_start", window.Start.Format(time.RFC3339)),
		slog.String("period_end", window.End.Format(time.RFC3339)),
		slog.Int("transactions", len(txns)))
	return &summary, nil
}

// LastComputed returns the stored summary for the window containing anchor
// without recomputing it, for callers that want the figures as of the last
// aggregation rather than a fresh roll-up.
func (s *reportingService) LastComputed(ctx context.Context, userID string, kind domain.PeriodKind, anchor time.Time, loc *time.Location) (*domain.PeriodSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", apperrors.ErrValidation)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown period kind %q: %w", kind, apperrors.ErrValidation)
	}
	if loc == nil {
		loc = s.defaultLoc
	}

	window := domain.WindowFor(kind, anchor, loc, s.weekStart)
	summary, err := s.summaryRepo.FindSummary(ctx, userID, kind, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored summary: %w", err)
	}
	return summary, nil
}

func summaryKey(userID string, kind domain.PeriodKind, window domain.PeriodWindow) string {
	return fmt.Sprintf("%s:%s:%d:%d", userID, kind, window.Start.Unix(), window.End.Unix())
}
