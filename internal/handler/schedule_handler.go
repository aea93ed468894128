package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/careerday-api/internal/dto"
	"github.com/noah-isme/careerday-api/internal/service"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
	"github.com/noah-isme/careerday-api/pkg/response"
)

// ScheduleHandler exposes allocation run and schedule read endpoints.
type ScheduleHandler struct {
	allocation *service.AllocationService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(allocation *service.AllocationService) *ScheduleHandler {
	return &ScheduleHandler{allocation: allocation}
}

// Run triggers a full allocation over the current snapshot.
func (h *ScheduleHandler) Run(c *gin.Context) {
	var req dto.RunScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.allocation.Run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// List returns the current schedule ordered by start time.
func (h *ScheduleHandler) List(c *gin.Context) {
	interviews, err := h.allocation.Schedule(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, interviews)
}
