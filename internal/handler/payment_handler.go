package handler

import (
	"encoding/json"
	"net/http"

	"gasdepot/internal/cache"
	"gasdepot/internal/domain"
	"gasdepot/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type PaymentHandler struct {
	payments *service.PaymentService
	idem     *cache.IdempotencyStore
	log      *zap.Logger
}

// NewPaymentHandler wires the storefront payment endpoints. idem may be nil.
func NewPaymentHandler(payments *service.PaymentService, idem *cache.IdempotencyStore, log *zap.Logger) *PaymentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentHandler{payments: payments, idem: idem, log: log}
}

// Initialize handles POST /api/payments/initialize. With an Idempotency-Key the
// first successful response is replayed for repeats of the key.
func (h *PaymentHandler) Initialize(c *gin.Context) {
	ctx := c.Request.Context()
	key := c.GetHeader(IdempotencyKeyHeader)
	if cached, ok, err := h.idem.Get(ctx, "initialize", key); err != nil {
		h.log.Warn("idempotency lookup failed", zap.Error(err))
	} else if ok {
		c.Header("Idempotent-Replayed", "true")
		c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	var req service.InitializeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validation("invalid request body"))
		return
	}
	res, err := h.payments.InitializePayment(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	body, err := json.Marshal(res.Response.WithReference())
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.idem.Put(ctx, "initialize", key, body); err != nil {
		h.log.Warn("idempotency store failed", zap.String("reference", res.Reference), zap.Error(err))
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Verify handles GET /api/payments/verify/:reference and returns the provider's
// response as received.
func (h *PaymentHandler) Verify(c *gin.Context) {
	resp, err := h.payments.Verify(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", resp.Raw)
}
