package handler

import (
	"io"
	"net/http"

	"gasdepot/internal/domain"
	"gasdepot/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	NotchSignatureHeader = "x-notch-signature"
	maxWebhookBody       = 1 << 20
)

// NotchPayWebhookHandler receives signed NotchPay events. Responses are plain
// text; any 2xx stops provider retries.
type NotchPayWebhookHandler struct {
	payments *service.PaymentService
	log      *zap.Logger
}

func NewNotchPayWebhookHandler(payments *service.PaymentService, log *zap.Logger) *NotchPayWebhookHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotchPayWebhookHandler{payments: payments, log: log.Named("webhook")}
}

// Handle handles POST /api/payments/webhook/notchpay.
func (h *NotchPayWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid body")
		return
	}
	res, err := h.payments.HandleWebhook(c.Request.Context(), body, c.GetHeader(NotchSignatureHeader))
	if err != nil {
		_ = c.Error(err)
		c.String(domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}
	switch {
	case res.Ping:
		c.String(http.StatusOK, "webhook endpoint reachable")
	case res.Ignored:
		c.String(http.StatusOK, "event ignored")
	case !res.Outcome.Found:
		c.String(http.StatusOK, "unknown reference")
	default:
		c.String(http.StatusOK, "ok")
	}
}
