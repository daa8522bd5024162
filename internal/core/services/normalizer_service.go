package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
	"github.com/gigworks/gigtax/internal/dto"
	"github.com/google/uuid"
)

// normalizerService implements the NormalizerSvcFacade interface
type normalizerService struct {
	BaseService
	txnRepo        portsrepo.TransactionRepositoryFacade
	assignmentRepo portsrepo.AssignmentRepositoryFacade
	classifier     portssvc.ClassifierSvcFacade
	cache          portsrepo.ReportCache
	now            func() time.Time
}

// NormalizerServiceOption is a functional option for configuring the normalizer service
type NormalizerServiceOption func(*normalizerService)

// WithNormalizerReportCache sets the report cache invalidated after ingestion writes.
func WithNormalizerReportCache(cache portsrepo.ReportCache) NormalizerServiceOption {
	return func(s *normalizerService) {
		s.cache = cache
	}
}

// WithNormalizerClock overrides the time source, mainly for tests.
func WithNormalizerClock(now func() time.Time) NormalizerServiceOption {
	return func(s *normalizerService) {
		s.now = now
	}
}

// NewNormalizerService creates a new normalizer service with the provided options
func NewNormalizerService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	assignmentRepo portsrepo.AssignmentRepositoryFacade,
	classifierSvc portssvc.ClassifierSvcFacade,
	options ...NormalizerServiceOption,
) portssvc.NormalizerSvcFacade {
	svc := &normalizerService{
		txnRepo:        txnRepo,
		assignmentRepo: assignmentRepo,
		classifier:     classifierSvc,
		now:            time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure normalizerService implements the NormalizerSvcFacade interface
var _ portssvc.NormalizerSvcFacade = (*normalizerService)(nil)

// Normalize canonicalizes one raw platform payload into a Transaction.
func (s *normalizerService) Normalize(ctx context.Context, userID string, record dto.RawTransactionRecord) (*domain.Transaction, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", apperrors.ErrValidation)
	}

	platform := domain.Platform(strings.ToUpper(record.Platform))
	if !platform.IsKnown() {
		return nil, fmt.Errorf("unknown platform tag %q: %w", record.Platform, apperrors.ErrMalformedRecord)
	}

	fields, err := decodePayload(platform, record.Payload)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return &domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Platform:      platform,
		Amount:        fields.Amount,
		Description:   fields.Description,
		OccurredAt:    fields.OccurredAt,
		IngestedAt:    now,
		SourceRef:     fields.SourceRef,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}, nil
}

// IngestBatch normalizes and persists a batch of raw records, classifying
// each stored transaction. Per-record failures are collected in the result;
// one malformed record never aborts the rest of the batch.
func (s *normalizerService) IngestBatch(ctx context.Context, userID string, records []dto.RawTransactionRecord) (*dto.IngestBatchResult, error) {
	result := &dto.IngestBatchResult{}

	for i, record := range records {
		txn, err := s.Normalize(ctx, userID, record)
		if err != nil {
			s.LogWarn(ctx, "Rejected raw record",
				slog.Int("index", i),
				slog.String("platform", record.Platform),
				slog.String("reason", err.Error()))
			result.Failures = append(result.Failures, dto.IngestFailure{Index: i, Reason: err.Error()})
			continue
		}

		item, err := s.upsert(ctx, *txn)
		if err != nil {
			s.LogError(ctx, err, "Failed to persist normalized transaction",
				slog.Int("index", i),
				slog.String("platform", string(txn.Platform)),
				slog.String("source_ref", txn.SourceRef))
			result.Failures = append(result.Failures, dto.IngestFailure{Index: i, Reason: err.Error()})
			continue
		}
		result.Ingested = append(result.Ingested, item)
	}

	// Stored summaries are recomputed on demand; only the cache needs to
	// learn that the underlying data moved.
	if s.cache != nil && len(result.Ingested) > 0 {
		if err := s.cache.InvalidateUser(ctx, userID); err != nil {
			s.LogWarn(ctx, "Failed to invalidate report cache after ingestion",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
	}

	s.LogInfo(ctx, "Ingestion batch processed",
		slog.String("user_id", userID),
		slog.Int("ingested", len(result.Ingested)),
		slog.Int("failed", len(result.Failures)))
	return result, nil
}

// upsert applies the (platform, source_ref) idempotency contract: identical
// resubmission is a no-op, changed content is an update that invalidates an
// Automatic assignment and flags a ManualOverride stale.
func (s *normalizerService) upsert(ctx context.Context, txn domain.Transaction) (dto.IngestedTransaction, error) {
	existing, err := s.txnRepo.FindTransactionBySourceRef(ctx, txn.Platform, txn.SourceRef)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return dto.IngestedTransaction{}, fmt.Errorf("failed to look up transaction by source ref: %w", err)
	}

	if existing == nil {
		saveErr := s.txnRepo.SaveTransaction(ctx, txn)
		if saveErr == nil {
			return dto.IngestedTransaction{
				Transaction: txn,
				Assignment:  s.classify(ctx, txn),
			}, nil
		}
		if !errors.Is(saveErr, apperrors.ErrDuplicate) {
			return dto.IngestedTransaction{}, fmt.Errorf("failed to save transaction: %w", saveErr)
		}
		// Lost a concurrent first-ingest race for this source ref; converge on
		// the stored row instead of surfacing the duplicate.
		existing, err = s.txnRepo.FindTransactionBySourceRef(ctx, txn.Platform, txn.SourceRef)
		if err != nil {
			return dto.IngestedTransaction{}, fmt.Errorf("failed to look up transaction after duplicate save: %w", err)
		}
	}

	if existing.Amount.Equal(txn.Amount) &&
		existing.Description == txn.Description &&
		existing.OccurredAt.Equal(txn.OccurredAt) {
		// Identical resubmission: report the stored state untouched.
		assignment, err := s.activeAssignment(ctx, existing.TransactionID)
		if err != nil {
			return dto.IngestedTransaction{}, err
		}
		return dto.IngestedTransaction{Transaction: *existing, Assignment: assignment}, nil
	}

	updated := *existing
	updated.Amount = txn.Amount
	updated.Description = txn.Description
	updated.OccurredAt = txn.OccurredAt
	updated.IngestedAt = txn.IngestedAt
	updated.LastUpdatedAt = txn.IngestedAt
	updated.LastUpdatedBy = txn.UserID

	item := dto.IngestedTransaction{Transaction: updated, Updated: true}

	// The assignment consequence is decided first so the content update and
	// the invalidation commit in one database transaction. A partial update
	// must never leave the old decision active against new content.
	current, err := s.activeAssignment(ctx, updated.TransactionID)
	if err != nil {
		return dto.IngestedTransaction{}, err
	}
	switch {
	case current == nil:
		if err := s.txnRepo.UpdateTransaction(ctx, updated); err != nil {
			return dto.IngestedTransaction{}, fmt.Errorf("failed to update transaction: %w", err)
		}
		item.Assignment = s.classify(ctx, updated)
	case current.Method == domain.MethodManualOverride:
		// The override stays active but needs review against the new content.
		if err := s.txnRepo.UpdateTransactionFlaggingOverride(ctx, updated); err != nil {
			return dto.IngestedTransaction{}, fmt.Errorf("failed to update transaction flagging override: %w", err)
		}
		s.LogWarn(ctx, "Manual override flagged stale by re-ingestion",
			slog.String("transaction_id", updated.TransactionID),
			slog.String("error", apperrors.ErrStaleOverrideConflict.Error()))
		current.Stale = true
		item.Assignment = current
		item.OverrideStale = true
	default:
		// The automatic decision was made against stale content; drop it and
		// classify the new content from scratch.
		if err := s.txnRepo.UpdateTransactionDroppingAssignment(ctx, updated); err != nil {
			return dto.IngestedTransaction{}, fmt.Errorf("failed to update transaction invalidating assignment: %w", err)
		}
		item.Assignment = s.classify(ctx, updated)
	}
	return item, nil
}

// classify runs the classifier for a stored transaction. Classification
// problems never fail ingestion; the transaction simply surfaces without an
// assignment until reclassified.
func (s *normalizerService) classify(ctx context.Context, txn domain.Transaction) *domain.CategoryAssignment {
	assignment, err := s.classifier.Classify(ctx, txn)
	if err != nil {
		s.LogWarn(ctx, "Classification failed during ingestion",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("error", err.Error()))
		return nil
	}
	return assignment
}

func (s *normalizerService) activeAssignment(ctx context.Context, transactionID string) (*domain.CategoryAssignment, error) {
	assignment, err := s.assignmentRepo.FindActiveAssignment(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load active assignment: %w", err)
	}
	return assignment, nil
}
