package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pricing-service/internal/models"
)

// PricingRunner executes one pricing run. Satisfied by
// services.RecommendationService.
type PricingRunner interface {
	Run(ctx context.Context, req models.RunRequest) (*models.RunResponse, error)
}

// RunLister reads run history. Satisfied by repository.RunRepository.
type RunLister interface {
	ListRuns(ctx context.Context, limit, offset int) ([]models.PricingRun, int64, error)
}

// RecommendationHandler is the gateway-style invocation boundary. Fatal
// pipeline errors surface as a single flat error message.
type RecommendationHandler struct {
	service PricingRunner
	runs    RunLister
	logger  *logrus.Logger
}

func NewRecommendationHandler(service PricingRunner, runs RunLister, logger *logrus.Logger) *RecommendationHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RecommendationHandler{service: service, runs: runs, logger: logger}
}

// CreateRun executes a pricing run
// POST /api/v1/pricing/runs
func (h *RecommendationHandler) CreateRun(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("Pricing run request failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListRuns returns run history, newest first
// GET /api/v1/pricing/runs
func (h *RecommendationHandler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []models.PricingRun{}, "total": 0})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	runs, total, err := h.runs.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list pricing runs")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": total})
}
