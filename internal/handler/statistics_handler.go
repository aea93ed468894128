package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/careerday-api/internal/service"
	"github.com/noah-isme/careerday-api/pkg/response"
)

// StatisticsHandler exposes event statistics endpoints.
type StatisticsHandler struct {
	statistics *service.StatisticsService
}

// NewStatisticsHandler constructs StatisticsHandler.
func NewStatisticsHandler(statistics *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statistics: statistics}
}

// Statistics returns the event-wide snapshot.
func (h *StatisticsHandler) Statistics(c *gin.Context) {
	stats, err := h.statistics.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Summary returns the per-company operational overview.
func (h *StatisticsHandler) Summary(c *gin.Context) {
	summary, err := h.statistics.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
