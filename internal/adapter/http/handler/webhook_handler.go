package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"order-webhook-service/internal/core/ports"
	"order-webhook-service/pkg/apperror"
	"order-webhook-service/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	HeaderGatewaySignature = "X-Razorpay-Signature"
	HeaderGatewayEventID   = "X-Razorpay-Event-Id"
)

// WebhookHandler receives payment gateway deliveries.
type WebhookHandler struct {
	svc     ports.WebhookService
	timeout time.Duration
}

// NewWebhookHandler creates a new WebhookHandler. timeout <= 0 disables
// the per-request deadline.
func NewWebhookHandler(svc ports.WebhookService, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{svc: svc, timeout: timeout}
}

// Handle handles POST /webhook/razorpay. The body is read as raw bytes and
// passed on untouched so the signature can be checked against it.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.ErrPayloadTooLarge())
			return
		}
		response.Error(c, apperror.ErrBadJSON(err))
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	outcome, err := h.svc.HandleEvent(ctx, ports.WebhookRequest{
		Body:      body,
		Signature: c.GetHeader(HeaderGatewaySignature),
		EventID:   c.GetHeader(HeaderGatewayEventID),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Ack(c, string(outcome))
}
