// internal/handlers/webhook.go
package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/skytunes/skytunes-backend/internal/services"
	"github.com/skytunes/skytunes-backend/internal/utils"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
}

func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// HandleWebhook ingests a raw indexer delivery. Malformed payloads produce an
// empty result, not an error, so the indexer does not redeliver garbage
// forever. A store failure returns 500 to trigger redelivery.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "failed to read request body", nil)
		return
	}

	result, err := h.webhookService.Process(c.Request.Context(), payload)
	if err != nil {
		logrus.WithError(err).Error("Webhook processing failed")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, result)
}
