package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prashanttechie/portfolio-project/internal/http/middleware"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
)

// maxWebhookBody bounds what is read before the signature is checked.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	Logger     *slog.Logger
	Gateway    payments.Gateway
	WebhookSvc *payments.WebhookService
}

func NewWebhookHandler(logger *slog.Logger, gw payments.Gateway, svc *payments.WebhookService) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Gateway: gw, WebhookSvc: svc}
}

// POST /api/payments/webhook
// The signature covers the exact raw bytes, so the body is never re-encoded.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	ev, err := h.Gateway.VerifyWebhook(c.Request.Header, body)
	switch {
	case errors.Is(err, payments.ErrMissingSignature), errors.Is(err, payments.ErrBadSignature):
		payments.RecordSignatureFailure("webhook")
		h.Logger.WarnContext(c.Request.Context(), "webhook_signature_rejected",
			"security", true, "reason", err.Error(), "client_ip", c.ClientIP(),
			"request_id", middleware.GetRequestID(c))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	case errors.Is(err, payments.ErrMalformedEvent):
		// authentic but unreadable; a retry would not help
		h.Logger.WarnContext(c.Request.Context(), "webhook payload unreadable",
			"err", err, "request_id", middleware.GetRequestID(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook"})
		return
	}

	if _, err := h.WebhookSvc.Handle(c.Request.Context(), h.Gateway.Name(), ev, body); err != nil {
		// 500 so the gateway retries
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
