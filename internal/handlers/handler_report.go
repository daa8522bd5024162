package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
	"github.com/gigworks/gigtax/internal/dto"
	"github.com/gigworks/gigtax/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for period summaries
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to period summaries
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	userGroup := rg.Group("/users/:user_id")
	{
		userGroup.GET("/summaries", h.getSummary)
	}
}

// getSummary godoc
// @Summary Get a period summary
// @Description Recomputes and returns the weekly, monthly or yearly roll-up for the period containing the anchor date, bucketed in the requested timezone.
// @Tags reports
// @Produce json
// @Param user_id path string true "User ID"
// @Param kind query string true "Period kind" Enums(WEEKLY, MONTHLY, YEARLY)
// @Param anchor query string false "Any date inside the desired period (YYYY-MM-DD)" default(current date)
// @Param tz query string false "IANA timezone for period boundaries" default(configured default)
// @Param recompute query bool false "Set to false to return the stored summary from the last recompute" default(true)
// @Success 200 {object} dto.PeriodSummaryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "No stored summary for the period"
// @Failure 500 {object} map[string]string "Failed to compute summary"
// @Router /users/{user_id}/summaries [get]
func (h *reportingHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("user_id")
	if userID == "" {
		logger.Error("User ID missing from path for getSummary")
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required in path"})
		return
	}

	kind := domain.PeriodKind(c.Query("kind"))

	var loc *time.Location
	if tzName := c.Query("tz"); tzName != "" {
		parsed, err := time.LoadLocation(tzName)
		if err != nil {
			logger.Warn("Invalid timezone", slog.String("tz", tzName), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timezone: " + tzName})
			return
		}
		loc = parsed
	}

	anchorStr := c.DefaultQuery("anchor", time.Now().Format("2006-01-02"))
	anchor, err := time.Parse("2006-01-02", anchorStr)
	if err != nil {
		logger.Warn("Invalid anchor date format", slog.String("anchor", anchorStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	logger = logger.With(
		slog.String("user_id", userID),
		slog.String("kind", string(kind)),
		slog.String("anchor", anchorStr),
	)
	logger.Info("Received request to compute period summary")

	var summary *domain.PeriodSummary
	if c.DefaultQuery("recompute", "true") == "false" {
		summary, err = h.reportingService.LastComputed(c.Request.Context(), userID, kind, anchor, loc)
	} else {
		summary, err = h.reportingService.Aggregate(c.Request.Context(), userID, kind, anchor, loc)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid summary request", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("No stored summary for the requested period")
			c.JSON(http.StatusNotFound, gin.H{"error": "No stored summary for the requested period"})
		} else {
			logger.Error("Failed to compute period summary", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		}
		return
	}

	logger.Info("Period summary computed")
	c.JSON(http.StatusOK, dto.ToPeriodSummaryResponse(*summary))
}
