package router

import (
	"context"
	"net/http"
	"time"

	"gasdepot/config"
	"gasdepot/internal/cache"
	"gasdepot/internal/handler"
	"gasdepot/internal/metrics"
	"gasdepot/internal/middleware"
	"gasdepot/internal/models"
	"gasdepot/internal/repository"
	"gasdepot/internal/service"
	"gasdepot/internal/ws"
	"gasdepot/pkg/payment"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators the HTTP layer is built from.
type Deps struct {
	Config      *config.Config
	DB          *gorm.DB
	Gateway     payment.Gateway
	Idempotency *cache.IdempotencyStore // nil disables Idempotency-Key replay
	Registry    *prometheus.Registry
	Log         *zap.Logger
}

// App is the wired HTTP server plus the services background workers need.
type App struct {
	Engine   *gin.Engine
	Payments *service.PaymentService
	Hub      *ws.Hub
}

// Setup wires repositories, services and handlers. ctx bounds background
// helpers such as the rate limiter cleanup.
func Setup(ctx context.Context, d Deps) *App {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log.Named("http")))
	r.Use(middleware.Recovery(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", handler.IdempotencyKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.SetHTMLTemplate(handler.Templates())

	// Repositories
	productRepo := repository.NewProductRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)
	txRepo := repository.NewTransactionRepository(d.DB)
	subscriberRepo := repository.NewSubscriberRepository(d.DB)
	adminRepo := repository.NewAdminRepository(d.DB)
	auditRepo := repository.NewAuditLogRepository(d.DB)

	var m *metrics.Metrics
	if d.Registry != nil {
		m = metrics.New(d.Registry)
	}
	hub := ws.NewHub()

	// Services
	orderSvc := service.NewOrderService(orderRepo, txRepo)
	paymentSvc := service.NewPaymentService(orderSvc, txRepo, d.Gateway, service.PaymentConfig{
		Currency:      cfg.Store.Currency,
		CallbackURL:   cfg.Store.CallbackBaseURL + "/api/payments/callback",
		WebhookSecret: cfg.NotchPay.WebhookSecret,
	}, hub, m, log)
	paymentSvc.SetAuditLog(auditRepo)
	authSvc := service.NewAuthService(&cfg.JWT, adminRepo)

	// Handlers
	productHandler := handler.NewProductHandler(productRepo)
	orderHandler := handler.NewOrderHandler(orderSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, d.Idempotency, log)
	webhookHandler := handler.NewNotchPayWebhookHandler(paymentSvc, log)
	callbackHandler := handler.NewCallbackHandler(paymentSvc, cfg.Store.FrontendURL, log)
	subscriberHandler := handler.NewSubscriberHandler(subscriberRepo)
	adminHandler := handler.NewAdminHandler(authSvc, orderRepo, txRepo, paymentSvc, auditRepo)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}
	r.GET("/ws/payments/:reference", ws.PaymentStatus(hub, func(c *gin.Context, ref string) (*models.Transaction, error) {
		return paymentSvc.TransactionStatus(c.Request.Context(), ref)
	}, log))

	// Provider deliveries come from a few egress addresses and are authenticated
	// by signature, so they bypass the per-IP limiter.
	r.POST("/api/payments/webhook/notchpay", webhookHandler.Handle)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(ctx, cfg.Server.RateLimit, cfg.Server.RateWindow)))
	{
		api.GET("/products", productHandler.List)
		api.GET("/products/:id", productHandler.Get)

		api.POST("/orders", orderHandler.Create)
		api.GET("/orders/by-transaction/:reference", orderHandler.GetByTransaction)

		payments := api.Group("/payments")
		payments.POST("/initialize", paymentHandler.Initialize)
		payments.GET("/verify/:reference", paymentHandler.Verify)
		payments.GET("/callback", callbackHandler.Handle)

		api.POST("/subscribers", subscriberHandler.Create)

		api.POST("/admin/login", adminHandler.Login)
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired())
		admin.GET("/orders", adminHandler.ListOrders)
		admin.GET("/transactions", adminHandler.ListTransactions)
		admin.POST("/transactions/:reference/reconcile", adminHandler.Reconcile)
		admin.GET("/transactions/:reference/audit", adminHandler.AuditTrail)
	}

	return &App{Engine: r, Payments: paymentSvc, Hub: hub}
}
