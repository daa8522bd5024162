package dto

import (
	"time"

	"github.com/gigworks/gigtax/internal/core/domain"
)

// OverrideCategoryRequest is the manual-override input from the API-layer
// collaborator.
type OverrideCategoryRequest struct {
	Category string `json:"category" binding:"required,expense_category"`
}

// CategoryAssignmentResponse is the wire form of an assignment.
type CategoryAssignmentResponse struct {
	TransactionID string  `json:"transactionID"`
	Category      string  `json:"category"`
	Confidence    float64 `json:"confidence"`
	Method        string  `json:"method"`
	Stale         bool    `json:"stale"`
	AssignedAt    string  `json:"assignedAt"`
}

// ToCategoryAssignmentResponse converts a domain assignment to its response form.
func ToCategoryAssignmentResponse(a domain.CategoryAssignment) CategoryAssignmentResponse {
	return CategoryAssignmentResponse{
		TransactionID: a.TransactionID,
		Category:      string(a.Category),
		Confidence:    a.Confidence,
		Method:        string(a.Method),
		Stale:         a.Stale,
		AssignedAt:    a.AssignedAt.Format(time.RFC3339),
	}
}
