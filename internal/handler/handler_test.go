package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gasdepot/config"
	"gasdepot/internal/cache"
	"gasdepot/internal/database"
	"gasdepot/internal/repository"
	"gasdepot/internal/service"
	"gasdepot/internal/testutil"
	"gasdepot/pkg/payment"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret   = "whsec_handler"
	testFrontend = "http://shop.test"
)

type testEnv struct {
	db       *gorm.DB
	engine   *gin.Engine
	gateway  *payment.StubGateway
	payments *service.PaymentService
	jwt      *config.JWTConfig
}

func newTestEnv(t *testing.T, idem *cache.IdempotencyStore) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	jwtCfg := &config.JWTConfig{AccessSecret: "test", AccessExpiry: time.Hour, Issuer: "gasdepot"}
	_, err := database.SeedAdmin(db, &config.AdminConfig{Email: "ops@gasdepot.cm", Password: "s3cret"})
	require.NoError(t, err)

	gw := payment.NewStubGateway()
	orders := service.NewOrderService(orderRepo, txRepo)
	payments := service.NewPaymentService(orders, txRepo, gw, service.PaymentConfig{
		Currency:      "XAF",
		CallbackURL:   "http://api.test/api/payments/callback",
		WebhookSecret: testSecret,
	}, nil, nil, nil)
	payments.SetAuditLog(auditRepo)

	r := gin.New()
	r.SetHTMLTemplate(Templates())
	products := NewProductHandler(productRepo)
	orderH := NewOrderHandler(orders)
	paymentH := NewPaymentHandler(payments, idem, nil)
	webhookH := NewNotchPayWebhookHandler(payments, nil)
	callbackH := NewCallbackHandler(payments, testFrontend, nil)
	subscribers := NewSubscriberHandler(subscriberRepo)
	admin := NewAdminHandler(service.NewAuthService(jwtCfg, adminRepo), orderRepo, txRepo, payments, auditRepo)

	api := r.Group("/api")
	api.GET("/products", products.List)
	api.GET("/products/:id", products.Get)
	api.POST("/orders", orderH.Create)
	api.GET("/orders/by-transaction/:reference", orderH.GetByTransaction)
	api.POST("/payments/initialize", paymentH.Initialize)
	api.GET("/payments/verify/:reference", paymentH.Verify)
	api.POST("/payments/webhook/notchpay", webhookH.Handle)
	api.GET("/payments/callback", callbackH.Handle)
	api.POST("/subscribers", subscribers.Create)
	api.POST("/admin/login", admin.Login)
	api.GET("/admin/orders", admin.ListOrders)
	api.GET("/admin/transactions", admin.ListTransactions)
	api.POST("/admin/transactions/:reference/reconcile", admin.Reconcile)
	api.GET("/admin/transactions/:reference/audit", admin.AuditTrail)

	return &testEnv{db: db, engine: r, gateway: gw, payments: payments, jwt: jwtCfg}
}

func newRedisStore(t *testing.T) *cache.IdempotencyStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewIdempotencyStore(rdb, time.Hour)
}

func (e *testEnv) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func orderBody() map[string]interface{} {
	return map[string]interface{}{
		"customerName":    "Ada Nkemelu",
		"customerEmail":   "ada@example.com",
		"customerPhone":   "+237600000000",
		"deliveryAddress": "Rue Joss, Douala",
		"items": []map[string]interface{}{
			{"productId": "p1", "quantity": 2, "unitPrice": 1000},
		},
	}
}

func initializeBody() map[string]interface{} {
	return map[string]interface{}{
		"amount":    2000,
		"name":      "Ada Nkemelu",
		"email":     "ada@example.com",
		"phone":     "+237600000000",
		"orderData": orderBody(),
	}
}

// initialize runs a successful initialize and returns the reference.
func (e *testEnv) initialize(t *testing.T) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/payments/initialize", initializeBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ref, _ := decode(t, w)["reference"].(string)
	require.NotEmpty(t, ref)
	return ref
}
