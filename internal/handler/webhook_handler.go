package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunexia/portal-api/internal/models"
	"github.com/edunexia/portal-api/internal/service"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
	"github.com/edunexia/portal-api/pkg/response"
)

// WebhookHandler receives payment gateway notifications.
type WebhookHandler struct {
	webhooks *service.WebhookService
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(webhooks *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// Asaas godoc
// @Summary Asaas payment webhook
// @Description Receive payment status events and advance enrollment status
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param payload body models.AsaasWebhookEvent true "Webhook event"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /webhook/asaas [post]
func (h *WebhookHandler) Asaas(c *gin.Context) {
	var event models.AsaasWebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid webhook payload"))
		return
	}

	result, err := h.webhooks.HandleAsaasEvent(c.Request.Context(), event)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "", result, nil)
}
