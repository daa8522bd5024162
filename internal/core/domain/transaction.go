package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Platform identifies the gig platform a transaction originated from.
type Platform string

const (
	PlatformUber     Platform = "UBER"
	PlatformLyft     Platform = "LYFT"
	PlatformDoorDash Platform = "DOORDASH"
	PlatformUpwork   Platform = "UPWORK"
	PlatformFiverr   Platform = "FIVERR"
	PlatformManual   Platform = "MANUAL"
)

// KnownPlatforms lists every platform the normalizer has an adapter for.
var KnownPlatforms = []Platform{
	PlatformUber, PlatformLyft, PlatformDoorDash,
	PlatformUpwork, PlatformFiverr, PlatformManual,
}

// IsKnown reports whether p is a platform the engine can normalize.
func (p Platform) IsKnown() bool {
	for _, known := range KnownPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// Transaction is the canonical record produced by the normalizer from a raw
// platform payload. Amount sign carries the semantics: positive is an
// earning, negative an expense. (Platform, SourceRef) identifies at most one
// transaction; re-ingestion with the same key updates, never duplicates.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	UserID        string          `json:"userID"`
	Platform      Platform        `json:"platform"`
	Amount        decimal.Decimal `json:"amount"` // Signed; precise decimal type
	Description   string          `json:"description"`
	OccurredAt    time.Time       `json:"occurredAt"` // Always UTC
	IngestedAt    time.Time       `json:"ingestedAt"`
	SourceRef     string          `json:"sourceRef"` // Opaque external id, unique per platform
	AuditFields
}

// IsEarning reports whether the transaction is income rather than an expense.
func (t Transaction) IsEarning() bool {
	return t.Amount.IsPositive()
}

// CategorizedTransaction pairs a transaction with its active category
// assignment, if any. Aggregation reads these; a nil Assignment is treated
// as Unclassified.
type CategorizedTransaction struct {
	Transaction Transaction         `json:"transaction"`
	Assignment  *CategoryAssignment `json:"assignment,omitempty"`
}

// EffectiveCategory resolves the category aggregation should bucket the
// transaction under.
func (c CategorizedTransaction) EffectiveCategory() Category {
	if c.Transaction.IsEarning() {
		return CategoryEarnings
	}
	if c.Assignment == nil {
		return CategoryUnclassified
	}
	return c.Assignment.Category
}
