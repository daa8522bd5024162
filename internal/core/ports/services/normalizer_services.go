package services

import (
	"context"

	"github.com/gigworks/gigtax/internal/core/domain"
	"github.com/gigworks/gigtax/internal/dto"
)

// NormalizerSvcFacade is the sole entry point for raw platform payloads.
type NormalizerSvcFacade interface {
	// Normalize canonicalizes one raw platform payload into a Transaction
	// without persisting it. Missing or unparseable required fields yield
	// apperrors.ErrMalformedRecord.
	Normalize(ctx context.Context, userID string, record dto.RawTransactionRecord) (*domain.Transaction, error)

	// IngestBatch normalizes, deduplicates and persists a batch of raw
	// records for one user, classifying each stored transaction. The batch
	// is partial-failure tolerant: per-record failures are collected in the
	// result, never aborting the remaining records.
	IngestBatch(ctx context.Context, userID string, records []dto.RawTransactionRecord) (*dto.IngestBatchResult, error)
}
