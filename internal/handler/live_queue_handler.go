package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/careerday-api/internal/service"
	"github.com/noah-isme/careerday-api/pkg/response"
)

// LiveQueueHandler exposes the per-panel live queue board.
type LiveQueueHandler struct {
	queues *service.LiveQueueService
}

// NewLiveQueueHandler constructs LiveQueueHandler.
func NewLiveQueueHandler(queues *service.LiveQueueService) *LiveQueueHandler {
	return &LiveQueueHandler{queues: queues}
}

// List projects the live queue for every company.
func (h *LiveQueueHandler) List(c *gin.Context) {
	queues, err := h.queues.Queues(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queues)
}

// ByCompany projects the live queue for a single company.
func (h *LiveQueueHandler) ByCompany(c *gin.Context) {
	queue, err := h.queues.CompanyQueue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queue)
}
