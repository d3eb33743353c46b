package handler

import (
	"errors"
	"net/http"
	"strconv"

	"gasdepot/internal/domain"
	"gasdepot/internal/middleware"
	"gasdepot/internal/models"
	"gasdepot/internal/repository"
	"gasdepot/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	authSvc  *service.AuthService
	orders   *repository.OrderRepository
	txRepo   *repository.TransactionRepository
	payments *service.PaymentService
	audit    *repository.AuditLogRepository
}

func NewAdminHandler(
	authSvc *service.AuthService,
	orders *repository.OrderRepository,
	txRepo *repository.TransactionRepository,
	payments *service.PaymentService,
	audit *repository.AuditLogRepository,
) *AdminHandler {
	return &AdminHandler{
		authSvc:  authSvc,
		orders:   orders,
		txRepo:   txRepo,
		payments: payments,
		audit:    audit,
	}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validation("email and password are required"))
		return
	}
	a, token, expires, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}
	h.record(c, &a.ID, "admin.login", "admin", a.Email)
	c.JSON(http.StatusOK, gin.H{
		"admin":        a,
		"access_token": token,
		"expires_at":   expires,
	})
}

// ListOrders handles GET /api/admin/orders.
func (h *AdminHandler) ListOrders(c *gin.Context) {
	limit, offset := parsePagination(c)
	list, total, err := h.orders.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "limit": limit, "offset": offset})
}

// ListTransactions handles GET /api/admin/transactions.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	limit, offset := parsePagination(c)
	list, total, err := h.txRepo.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "limit": limit, "offset": offset})
}

// Reconcile handles POST /api/admin/transactions/:reference/reconcile.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	ref := c.Param("reference")
	if _, err := h.payments.Reconcile(c.Request.Context(), ref); err != nil {
		respondError(c, err)
		return
	}
	adminID := middleware.GetAdminID(c)
	h.record(c, &adminID, "admin.reconcile", "transaction", ref)
	tx, err := h.txRepo.GetByReference(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// AuditTrail handles GET /api/admin/transactions/:reference/audit.
func (h *AdminHandler) AuditTrail(c *gin.Context) {
	ref := c.Param("reference")
	if _, err := h.txRepo.GetByReference(c.Request.Context(), ref); err != nil {
		respondError(c, err)
		return
	}
	list, err := h.audit.ListByResource(c.Request.Context(), "transaction", ref, 100)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *AdminHandler) record(c *gin.Context, adminID *uint, action, resource, resourceID string) {
	if h.audit == nil {
		return
	}
	_ = h.audit.Create(c.Request.Context(), &models.AuditLog{
		AdminID:    adminID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
