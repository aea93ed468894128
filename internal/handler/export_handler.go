package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/careerday-api/internal/dto"
	"github.com/noah-isme/careerday-api/internal/service"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
	"github.com/noah-isme/careerday-api/pkg/response"
)

// ExportHandler exposes schedule export downloads.
type ExportHandler struct {
	exports *service.ExportService
	archive *service.ExportArchiveService
}

// NewExportHandler constructs ExportHandler. archive may be nil when
// background exports are switched off.
func NewExportHandler(exports *service.ExportService, archive *service.ExportArchiveService) *ExportHandler {
	return &ExportHandler{exports: exports, archive: archive}
}

// ScheduleCSV streams the schedule as CSV.
func (h *ExportHandler) ScheduleCSV(c *gin.Context) {
	if !h.exports.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	out, err := h.exports.ScheduleCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule.csv"`)
	c.Data(http.StatusOK, "text/csv", out)
}

// SchedulePDF streams the schedule as PDF.
func (h *ExportHandler) SchedulePDF(c *gin.Context) {
	if !h.exports.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	out, err := h.exports.SchedulePDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule.pdf"`)
	c.Data(http.StatusOK, "application/pdf", out)
}

// CompanyScheduleCSV streams a single company's schedule as CSV.
func (h *ExportHandler) CompanyScheduleCSV(c *gin.Context) {
	if !h.exports.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	id := c.Param("id")
	out, err := h.exports.CompanyScheduleCSV(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule_`+id+`.csv"`)
	c.Data(http.StatusOK, "text/csv", out)
}

// WalkinCSV streams the walk-in candidate list as CSV.
func (h *ExportHandler) WalkinCSV(c *gin.Context) {
	if !h.exports.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	out, err := h.exports.WalkinCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="walkins.csv"`)
	c.Data(http.StatusOK, "text/csv", out)
}

// Archive queues a background export job.
func (h *ExportHandler) Archive(c *gin.Context) {
	if h.archive == nil || !h.exports.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	var req dto.ArchiveExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	resp, err := h.archive.Enqueue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, resp)
}

// ArchiveStatus reports a queued export job's state.
func (h *ExportHandler) ArchiveStatus(c *gin.Context) {
	if h.archive == nil || !h.exports.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	resp, err := h.archive.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Download streams an archived export referenced by a signed token.
func (h *ExportHandler) Download(c *gin.Context) {
	if h.archive == nil || !h.exports.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	dl, err := h.archive.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer dl.File.Close() //nolint:errcheck

	info, err := dl.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+dl.Filename+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), dl.MimeType, dl.File, nil)
}
