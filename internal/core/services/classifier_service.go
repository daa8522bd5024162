package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/classifier"
	"github.com/gigworks/gigtax/internal/core/domain"
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
)

const (
	defaultMinConfidence = 0.55
	defaultScoreTimeout  = 5 * time.Second
)

// classifierService implements the ClassifierSvcFacade interface
type classifierService struct {
	BaseService
	assignmentRepo portsrepo.AssignmentRepositoryFacade
	txnRepo        portsrepo.TransactionReader
	rules          *classifier.RuleTable
	scorer         portssvc.ModelScorer
	cache          portsrepo.ReportCache
	minConfidence  float64
	scoreTimeout   time.Duration
	now            func() time.Time
}

// ClassifierServiceOption is a functional option for configuring the classifier service
type ClassifierServiceOption func(*classifierService)

// WithRuleTable replaces the built-in rule table.
func WithRuleTable(table *classifier.RuleTable) ClassifierServiceOption {
	return func(s *classifierService) {
		s.rules = table
	}
}

// WithModelScorer replaces the built-in statistical scorer, e.g. with the
// Gemini-backed one.
func WithModelScorer(scorer portssvc.ModelScorer) ClassifierServiceOption {
	return func(s *classifierService) {
		s.scorer = scorer
	}
}

// WithClassifierReportCache sets the report cache invalidated after a manual
// override is applied or cleared. Cached summaries must never outlive the
// category totals they were computed from.
func WithClassifierReportCache(cache portsrepo.ReportCache) ClassifierServiceOption {
	return func(s *classifierService) {
		s.cache = cache
	}
}

// WithMinConfidence sets the threshold below which a model score yields
// Unclassified instead of a low-confidence guess.
func WithMinConfidence(min float64) ClassifierServiceOption {
	return func(s *classifierService) {
		s.minConfidence = min
	}
}

// WithScoreTimeout bounds the blocking model call.
func WithScoreTimeout(timeout time.Duration) ClassifierServiceOption {
	return func(s *classifierService) {
		s.scoreTimeout = timeout
	}
}

// WithClassifierClock overrides the time source, mainly for tests.
func WithClassifierClock(now func() time.Time) ClassifierServiceOption {
	return func(s *classifierService) {
		s.now = now
	}
}

// NewClassifierService creates a new classifier service with the provided options
func NewClassifierService(
	assignmentRepo portsrepo.AssignmentRepositoryFacade,
	txnRepo portsrepo.TransactionReader,
	options ...ClassifierServiceOption,
) portssvc.ClassifierSvcFacade {
	svc := &classifierService{
		assignmentRepo: assignmentRepo,
		txnRepo:        txnRepo,
		rules:          classifier.DefaultRuleTable(),
		scorer:         classifier.NewDefaultTokenScorer(),
		minConfidence:  defaultMinConfidence,
		scoreTimeout:   defaultScoreTimeout,
		now:            time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure classifierService implements the ClassifierSvcFacade interface
var _ portssvc.ClassifierSvcFacade = (*classifierService)(nil)

// Classify produces and persists the active assignment for a transaction.
func (s *classifierService) Classify(ctx context.Context, txn domain.Transaction) (*domain.CategoryAssignment, error) {
	existing, err := s.assignmentRepo.FindActiveAssignment(ctx, txn.TransactionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load active assignment: %w", err)
	}
	if existing != nil && existing.Method == domain.MethodManualOverride {
		// A manual decision short-circuits both stages.
		return existing, nil
	}

	assignment := s.classifyOnce(ctx, txn)
	if err := s.assignmentRepo.SaveAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}

	// The write may lose a concurrent conflict (override wins, last writer
	// wins); report whatever ended up active.
	active, err := s.assignmentRepo.FindActiveAssignment(ctx, txn.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload active assignment: %w", err)
	}
	return active, nil
}

// classifyOnce runs the two-stage policy without touching storage.
func (s *classifierService) classifyOnce(ctx context.Context, txn domain.Transaction) domain.CategoryAssignment {
	assignment := domain.CategoryAssignment{
		TransactionID: txn.TransactionID,
		Method:        domain.MethodAutomatic,
		AssignedAt:    s.now().UTC(),
	}

	// Earnings never run through expense categorization.
	if txn.IsEarning() {
		assignment.Category = domain.CategoryEarnings
		assignment.Confidence = 1.0
		return assignment
	}

	// Rule stage: deterministic and auditable, tried first.
	if category, ok := s.rules.Match(txn.Description); ok {
		assignment.Category = category
		assignment.Confidence = 1.0
		return assignment
	}

	// Statistical stage, bounded so a stuck model never blocks ingestion.
	scoreCtx, cancel := context.WithTimeout(ctx, s.scoreTimeout)
	defer cancel()
	category, confidence, err := s.scorer.Score(scoreCtx, txn.Description)
	if err != nil {
		s.LogWarn(ctx, "Statistical stage unavailable, degrading to rule stage only",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("error", fmt.Errorf("%v: %w", err, apperrors.ErrClassificationUnavailable).Error()))
		assignment.Category = domain.CategoryUnclassified
		assignment.Confidence = 0
		return assignment
	}

	// A wrong deductible category is worse than no category.
	if confidence < s.minConfidence {
		category = domain.CategoryUnclassified
	}
	assignment.Category = category
	assignment.Confidence = confidence
	return assignment
}

// Override applies a manual category decision for a transaction.
func (s *classifierService) Override(ctx context.Context, transactionID string, category domain.Category) (*domain.CategoryAssignment, error) {
	if !domain.IsValidExpenseCategory(category) {
		return nil, fmt.Errorf("unknown category %q: %w", category, apperrors.ErrValidation)
	}
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}

	assignment := domain.CategoryAssignment{
		TransactionID: transactionID,
		Category:      category,
		Confidence:    1.0,
		Method:        domain.MethodManualOverride,
		AssignedAt:    s.now().UTC(),
	}
	if err := s.assignmentRepo.SaveAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to save manual override: %w", err)
	}
	s.invalidateReportCache(ctx, txn.UserID)

	s.LogInfo(ctx, "Manual override applied",
		slog.String("transaction_id", transactionID),
		slog.String("category", string(category)))
	return &assignment, nil
}

// ClearOverride removes a manual override and re-runs automatic classification.
func (s *classifierService) ClearOverride(ctx context.Context, transactionID string) (*domain.CategoryAssignment, error) {
	existing, err := s.assignmentRepo.FindActiveAssignment(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active assignment: %w", err)
	}
	if existing.Method != domain.MethodManualOverride {
		return nil, fmt.Errorf("transaction %s has no manual override: %w", transactionID, apperrors.ErrNotFound)
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}

	if err := s.assignmentRepo.DeleteAssignment(ctx, transactionID); err != nil {
		return nil, fmt.Errorf("failed to clear manual override: %w", err)
	}

	s.LogInfo(ctx, "Manual override cleared, reclassifying",
		slog.String("transaction_id", transactionID))
	active, classifyErr := s.Classify(ctx, *txn)

	// The override is gone either way; summaries must not serve the
	// pre-override totals for the rest of the cache TTL.
	s.invalidateReportCache(ctx, txn.UserID)

	if classifyErr != nil {
		return nil, classifyErr
	}
	return active, nil
}

// invalidateReportCache drops cached summaries after an assignment changed
// outside ingestion. Best effort; the TTL bounds staleness when it fails.
func (s *classifierService) invalidateReportCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.LogWarn(ctx, "Failed to invalidate report cache after override change",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
}
