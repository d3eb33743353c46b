package handler

import (
	"net/http"

	"gasdepot/internal/domain"
	"gasdepot/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validation("invalid request body"))
		return
	}
	o, err := h.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// GetByTransaction handles GET /api/orders/by-transaction/:reference.
func (h *OrderHandler) GetByTransaction(c *gin.Context) {
	view, err := h.orders.GetOrderByTransactionReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
