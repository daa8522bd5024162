package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
	"github.com/gigworks/gigtax/internal/dto"
	"github.com/gigworks/gigtax/internal/middleware"
	"github.com/gin-gonic/gin"
)

// taxHandler handles HTTP requests for tax estimates
type taxHandler struct {
	taxService portssvc.TaxService
}

// newTaxHandler creates a new taxHandler
func newTaxHandler(ts portssvc.TaxService) *taxHandler {
	return &taxHandler{
		taxService: ts,
	}
}

// registerTaxRoutes registers routes related to tax estimates
func registerTaxRoutes(rg *gin.RouterGroup, taxService portssvc.TaxService) {
	h := newTaxHandler(taxService)

	userGroup := rg.Group("/users/:user_id")
	{
		userGroup.GET("/tax-estimate", h.getTaxEstimate)
	}
}

// getTaxEstimate godoc
// @Summary Estimate tax owed for a year
// @Description Aggregates the user's yearly figures and applies the progressive bracket table registered for the requested tax year.
// @Tags tax
// @Produce json
// @Param user_id path string true "User ID"
// @Param year query int false "Tax year" default(current year)
// @Param recompute query bool false "Set to false to return the stored estimate from the last run" default(true)
// @Success 200 {object} dto.TaxEstimateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "No stored estimate for the year"
// @Failure 422 {object} map[string]string "No rule table for the requested year"
// @Failure 500 {object} map[string]string "Failed to compute estimate"
// @Router /users/{user_id}/tax-estimate [get]
func (h *taxHandler) getTaxEstimate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("user_id")
	if userID == "" {
		logger.Error("User ID missing from path for getTaxEstimate")
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required in path"})
		return
	}

	yearStr := c.DefaultQuery("year", strconv.Itoa(time.Now().Year()))
	taxYear, err := strconv.Atoi(yearStr)
	if err != nil {
		logger.Warn("Invalid tax year", slog.String("year", yearStr))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tax year: " + yearStr})
		return
	}

	logger = logger.With(
		slog.String("user_id", userID),
		slog.Int("tax_year", taxYear),
	)
	logger.Info("Received request to estimate tax")

	var estimate *domain.TaxEstimate
	if c.DefaultQuery("recompute", "true") == "false" {
		estimate, err = h.taxService.LatestEstimate(c.Request.Context(), userID, taxYear)
	} else {
		estimate, err = h.taxService.EstimateTax(c.Request.Context(), userID, taxYear)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrUnsupportedTaxYear) {
			logger.Warn("No bracket table registered for tax year")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No tax rule table is available for year " + yearStr})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("No stored estimate for the requested year")
			c.JSON(http.StatusNotFound, gin.H{"error": "No stored estimate exists for year " + yearStr})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid estimate request", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to compute tax estimate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute estimate"})
		}
		return
	}

	logger.Info("Tax estimate computed")
	c.JSON(http.StatusOK, dto.ToTaxEstimateResponse(*estimate))
}
