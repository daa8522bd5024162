package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
	"github.com/gigworks/gigtax/internal/dto"
	"github.com/gigworks/gigtax/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// ingestHandler handles HTTP requests for raw transaction ingestion
type ingestHandler struct {
	normalizerService portssvc.NormalizerSvcFacade
}

// newIngestHandler creates a new ingestHandler
func newIngestHandler(ns portssvc.NormalizerSvcFacade) *ingestHandler {
	return &ingestHandler{
		normalizerService: ns,
	}
}

// registerIngestRoutes registers routes related to transaction ingestion
func registerIngestRoutes(rg *gin.RouterGroup, normalizerService portssvc.NormalizerSvcFacade, ingestLimiter *limiter.Limiter) {
	h := newIngestHandler(normalizerService)

	userGroup := rg.Group("/users/:user_id")
	{
		userGroup.POST("/transactions/ingest", middleware.RateLimit(ingestLimiter), h.ingestBatch)
	}
}

// ingestBatch godoc
// @Summary Ingest a batch of raw platform transactions
// @Description Normalizes, deduplicates and classifies raw platform payloads for one user. Individual malformed records are reported per-index without aborting the batch.
// @Tags transactions
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param batch body dto.IngestBatchRequest true "Raw platform records"
// @Success 200 {object} dto.IngestBatchResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 429 {object} map[string]string "Rate limit exceeded"
// @Failure 500 {object} map[string]string "Failed to ingest batch"
// @Router /users/{user_id}/transactions/ingest [post]
func (h *ingestHandler) ingestBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("user_id")
	if userID == "" {
		logger.Error("User ID missing from path for ingestBatch")
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required in path"})
		return
	}

	var req dto.IngestBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid ingest batch request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("user_id", userID),
		slog.Int("record_count", len(req.Records)),
	)
	logger.Info("Received request to ingest transaction batch")

	result, err := h.normalizerService.IngestBatch(c.Request.Context(), userID, req.Records)
	if err != nil {
		logger.Error("Failed to ingest transaction batch", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest batch"})
		return
	}

	logger.Info("Transaction batch ingested",
		slog.Int("ingested", len(result.Ingested)),
		slog.Int("failures", len(result.Failures)),
	)
	c.JSON(http.StatusOK, result)
}
