package dto

import (
	"encoding/json"

	"github.com/gigworks/gigtax/internal/core/domain"
)

// RawTransactionRecord is one opaque platform payload handed over by the
// ingestion collaborator. The payload shape is platform-specific; the
// normalizer owns decoding it.
type RawTransactionRecord struct {
	Platform string          `json:"platform" binding:"required"`
	Payload  json.RawMessage `json:"payload" binding:"required"`
}

// IngestBatchRequest carries a batch of raw records for one user.
type IngestBatchRequest struct {
	Records []RawTransactionRecord `json:"records" binding:"required,min=1,dive"`
}

// IngestedTransaction is the per-record success detail of a batch.
type IngestedTransaction struct {
	Transaction   domain.Transaction          `json:"transaction"`
	Assignment    *domain.CategoryAssignment  `json:"assignment,omitempty"`
	Updated       bool                        `json:"updated"`       // Re-ingestion changed an existing transaction
	OverrideStale bool                        `json:"overrideStale"` // A manual override was flagged stale by the update
}

// IngestFailure is the per-record failure detail of a batch. One malformed
// record never aborts the rest of the batch.
type IngestFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// IngestBatchResult collects successes and failures of one batch.
type IngestBatchResult struct {
	Ingested []IngestedTransaction `json:"ingested"`
	Failures []IngestFailure       `json:"failures"`
}
