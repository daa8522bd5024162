package domain

import "time"

// AssignmentMethod records how a category assignment was produced.
type AssignmentMethod string

const (
	MethodAutomatic      AssignmentMethod = "AUTOMATIC"
	MethodManualOverride AssignmentMethod = "MANUAL_OVERRIDE"
)

// CategoryAssignment is the active category decision for one transaction.
// At most one assignment is active per transaction. A ManualOverride
// permanently supersedes later Automatic re-classification until it is
// explicitly cleared; when the underlying transaction changes under an
// override, the override is kept and flagged Stale for review.
type CategoryAssignment struct {
	TransactionID string           `json:"transactionID"`
	Category      Category         `json:"category"`
	Confidence    float64          `json:"confidence"` // 0.0 - 1.0
	Method        AssignmentMethod `json:"method"`
	Stale         bool             `json:"stale"`
	AssignedAt    time.Time        `json:"assignedAt"`
}

// Supersedes reports whether this assignment should replace existing under
// the engine's conflict rules: ManualOverride always wins regardless of
// timestamp; otherwise last writer wins on AssignedAt.
func (a CategoryAssignment) Supersedes(existing *CategoryAssignment) bool {
	if existing == nil {
		return true
	}
	if existing.Method == MethodManualOverride {
		return a.Method == MethodManualOverride
	}
	if a.Method == MethodManualOverride {
		return true
	}
	return !a.AssignedAt.Before(existing.AssignedAt)
}
