package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
	"github.com/gigworks/gigtax/internal/dto"
	"github.com/gigworks/gigtax/internal/middleware"
	"github.com/gin-gonic/gin"
)

// classifyHandler handles HTTP requests for category assignments
type classifyHandler struct {
	classifierService portssvc.ClassifierSvcFacade
}

// newClassifyHandler creates a new classifyHandler
func newClassifyHandler(cs portssvc.ClassifierSvcFacade) *classifyHandler {
	return &classifyHandler{
		classifierService: cs,
	}
}

// registerClassifyRoutes registers routes related to category assignments
func registerClassifyRoutes(rg *gin.RouterGroup, classifierService portssvc.ClassifierSvcFacade) {
	h := newClassifyHandler(classifierService)

	txnGroup := rg.Group("/transactions/:transaction_id")
	{
		txnGroup.PUT("/category", h.overrideCategory)
		txnGroup.DELETE("/category", h.clearOverride)
	}
}

// overrideCategory godoc
// @Summary Manually override a transaction's category
// @Description Applies a manual category decision for a transaction. The override supersedes any automatic assignment and survives later automatic re-classification until cleared.
// @Tags assignments
// @Accept json
// @Produce json
// @Param transaction_id path string true "Transaction ID"
// @Param override body dto.OverrideCategoryRequest true "Override details"
// @Success 200 {object} dto.CategoryAssignmentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to apply override"
// @Router /transactions/{transaction_id}/category [put]
func (h *classifyHandler) overrideCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transaction_id")
	if transactionID == "" {
		logger.Error("Transaction ID missing from path for overrideCategory")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction ID required in path"})
		return
	}

	var req dto.OverrideCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid override request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("transaction_id", transactionID),
		slog.String("category", req.Category),
	)
	logger.Info("Received request to override category")

	assignment, err := h.classifierService.Override(c.Request.Context(), transactionID, domain.Category(req.Category))
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid override category", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found for override")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to apply category override", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply override"})
		}
		return
	}

	logger.Info("Category override applied")
	c.JSON(http.StatusOK, dto.ToCategoryAssignmentResponse(*assignment))
}

// clearOverride godoc
// @Summary Clear a manual category override
// @Description Removes the manual override for a transaction and re-runs automatic classification. The resulting automatic assignment is returned.
// @Tags assignments
// @Produce json
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.CategoryAssignmentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "No override to clear"
// @Failure 500 {object} map[string]string "Failed to clear override"
// @Router /transactions/{transaction_id}/category [delete]
func (h *classifyHandler) clearOverride(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transaction_id")
	if transactionID == "" {
		logger.Error("Transaction ID missing from path for clearOverride")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction ID required in path"})
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID))
	logger.Info("Received request to clear category override")

	assignment, err := h.classifierService.ClearOverride(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("No manual override found to clear")
			c.JSON(http.StatusNotFound, gin.H{"error": "No manual override exists for this transaction"})
		} else {
			logger.Error("Failed to clear category override", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear override"})
		}
		return
	}

	logger.Info("Category override cleared")
	c.JSON(http.StatusOK, dto.ToCategoryAssignmentResponse(*assignment))
}
