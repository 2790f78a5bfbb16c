package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edunexia/portal-api/internal/models"
	"github.com/edunexia/portal-api/internal/service"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
	"github.com/edunexia/portal-api/pkg/response"
)

// SimplifiedEnrollmentHandler exposes the checkout records and the
// conversion control surface.
type SimplifiedEnrollmentHandler struct {
	enrollments *service.SimplifiedEnrollmentService
	converter   *service.ConverterService
	reconciler  *service.ReconcilerService
}

// NewSimplifiedEnrollmentHandler constructs SimplifiedEnrollmentHandler.
func NewSimplifiedEnrollmentHandler(enrollments *service.SimplifiedEnrollmentService, converter *service.ConverterService, reconciler *service.ReconcilerService) *SimplifiedEnrollmentHandler {
	return &SimplifiedEnrollmentHandler{enrollments: enrollments, converter: converter, reconciler: reconciler}
}

// Checkout godoc
// @Summary Create simplified enrollment
// @Description Public checkout creating a lead record in pending state
// @Tags SimplifiedEnrollments
// @Accept json
// @Produce json
// @Param payload body service.CheckoutRequest true "Checkout payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /simplified-enrollments [post]
func (h *SimplifiedEnrollmentHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid checkout payload"))
		return
	}
	se, err := h.enrollments.Checkout(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, se)
}

// List godoc
// @Summary List simplified enrollments
// @Tags SimplifiedEnrollments
// @Produce json
// @Param status query string false "Filter by status"
// @Param courseId query int false "Filter by course"
// @Param search query string false "Search by student name, email or document"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /simplified-enrollments [get]
func (h *SimplifiedEnrollmentHandler) List(c *gin.Context) {
	var filter models.SimplifiedEnrollmentFilter
	filter.Status = models.SimplifiedEnrollmentStatus(c.Query("status"))
	if courseID, err := strconv.ParseInt(c.Query("courseId"), 10, 64); err == nil {
		filter.CourseID = courseID
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	records, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "", records, pagination)
}

// Get godoc
// @Summary Get simplified enrollment detail
// @Tags SimplifiedEnrollments
// @Produce json
// @Param id path int true "Simplified enrollment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /simplified-enrollments/{id} [get]
func (h *SimplifiedEnrollmentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	se, err := h.enrollments.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "", se, nil)
}

// Cancel godoc
// @Summary Cancel simplified enrollment
// @Tags SimplifiedEnrollments
// @Accept json
// @Produce json
// @Param id path int true "Simplified enrollment ID"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /simplified-enrollments/{id} [delete]
func (h *SimplifiedEnrollmentHandler) Cancel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var payload struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&payload)

	if err := h.enrollments.Cancel(c.Request.Context(), id, actorID(c), payload.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Logs godoc
// @Summary List status transition history
// @Tags SimplifiedEnrollments
// @Produce json
// @Param id path int true "Simplified enrollment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /simplified-enrollments/{id}/logs [get]
func (h *SimplifiedEnrollmentHandler) Logs(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, err := h.enrollments.Logs(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "", logs, nil)
}

// Sync godoc
// @Summary Convert one simplified enrollment
// @Description Run the conversion pipeline for a single record
// @Tags SimplifiedEnrollments
// @Produce json
// @Param id path int true "Simplified enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /simplified-enrollments/{id}/sync [post]
func (h *SimplifiedEnrollmentHandler) Sync(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.converter.Sync(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "enrollment converted", nil, nil)
}

// ProcessPending godoc
// @Summary Convert all payment-confirmed records
// @Tags SimplifiedEnrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /simplified-enrollments/process-pending [post]
func (h *SimplifiedEnrollmentHandler) ProcessPending(c *gin.Context) {
	result, err := h.reconciler.ProcessPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "", result, nil)
}

// RecoverIncomplete godoc
// @Summary Repair partially converted records
// @Tags SimplifiedEnrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /simplified-enrollments/recover-incomplete [post]
func (h *SimplifiedEnrollmentHandler) RecoverIncomplete(c *gin.Context) {
	result, err := h.reconciler.RecoverIncomplete(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "", result, nil)
}

// FixStudentAccount godoc
// @Summary Repair the student account for a record
// @Description Provision or relink the student account without touching the enrollment
// @Tags SimplifiedEnrollments
// @Produce json
// @Param id path int true "Simplified enrollment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /simplified-enrollments/{id}/fix-student-account [post]
func (h *SimplifiedEnrollmentHandler) FixStudentAccount(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.converter.FixStudentAccount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "student account repaired", gin.H{
		"userId":   user.ID,
		"username": user.Username,
	}, nil)
}
