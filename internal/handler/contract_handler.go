package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edunexia/portal-api/internal/models"
	"github.com/edunexia/portal-api/internal/service"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
	"github.com/edunexia/portal-api/pkg/export"
	"github.com/edunexia/portal-api/pkg/response"
)

// ContractHandler exposes the educational contract read endpoints.
type ContractHandler struct {
	contracts *service.ContractService
	pdf       *export.ContractPDF
}

// NewContractHandler constructs ContractHandler.
func NewContractHandler(contracts *service.ContractService, pdf *export.ContractPDF) *ContractHandler {
	return &ContractHandler{contracts: contracts, pdf: pdf}
}

// List godoc
// @Summary List contracts
// @Tags Contracts
// @Produce json
// @Param studentId query int false "Filter by student"
// @Param courseId query int false "Filter by course"
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by contract type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	var filter models.ContractFilter
	if studentID, err := strconv.ParseInt(c.Query("studentId"), 10, 64); err == nil {
		filter.StudentID = studentID
	}
	if courseID, err := strconv.ParseInt(c.Query("courseId"), 10, 64); err == nil {
		filter.CourseID = courseID
	}
	filter.Status = models.ContractStatus(c.Query("status"))
	filter.Type = models.ContractType(c.Query("type"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	contracts, pagination, err := h.contracts.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "", contracts, pagination)
}

// Get godoc
// @Summary Get contract detail
// @Tags Contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /contracts/{id} [get]
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "", contract, nil)
}

// Download godoc
// @Summary Download contract as PDF
// @Tags Contracts
// @Produce application/pdf
// @Param id path int true "Contract ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /contracts/{id}/pdf [get]
func (h *ContractHandler) Download(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.pdf.Render(contract)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render contract"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", contract.Number))
	c.Data(http.StatusOK, "application/pdf", payload)
}
