package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/careerday-api/internal/models"
	"github.com/noah-isme/careerday-api/internal/service"
	"github.com/noah-isme/careerday-api/pkg/response"
)

// InterviewHandler exposes interview lifecycle endpoints.
type InterviewHandler struct {
	interviews *service.InterviewService
}

// NewInterviewHandler constructs InterviewHandler.
func NewInterviewHandler(interviews *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

// Get fetches one interview.
func (h *InterviewHandler) Get(c *gin.Context) {
	iv, err := h.interviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, iv)
}

// Start marks an interview as running.
func (h *InterviewHandler) Start(c *gin.Context) {
	h.transition(c, models.InterviewInProgress)
}

// Complete marks an interview as finished.
func (h *InterviewHandler) Complete(c *gin.Context) {
	h.transition(c, models.InterviewCompleted)
}

// Cancel withdraws an interview.
func (h *InterviewHandler) Cancel(c *gin.Context) {
	h.transition(c, models.InterviewCancelled)
}

func (h *InterviewHandler) transition(c *gin.Context, target models.InterviewStatus) {
	iv, err := h.interviews.Transition(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, iv)
}
