package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/careerday-api/internal/dto"
	"github.com/noah-isme/careerday-api/internal/service"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
	"github.com/noah-isme/careerday-api/pkg/response"
)

// CompanyHandler exposes company configuration endpoints.
type CompanyHandler struct {
	companies *service.CompanyService
}

// NewCompanyHandler constructs CompanyHandler.
func NewCompanyHandler(companies *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// List returns all companies.
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companies.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, companies)
}

// Get fetches one company.
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.companies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company)
}

// UpdateSettings replaces a company's scheduling configuration.
func (h *CompanyHandler) UpdateSettings(c *gin.Context) {
	var req dto.CompanySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	company, err := h.companies.UpdateSettings(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company)
}
