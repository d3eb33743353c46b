package service

import (
	"context"
	"sync"
	"testing"

	"gasdepot/internal/domain"
	"gasdepot/internal/models"
	"gasdepot/internal/repository"
	"gasdepot/internal/testutil"
	"gasdepot/pkg/payment"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test"

type recordingNotifier struct {
	mu      sync.Mutex
	updates []domain.StatusUpdate
}

func (n *recordingNotifier) PublishStatus(u domain.StatusUpdate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, u)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.updates)
}

type fixture struct {
	db       *gorm.DB
	orders   *OrderService
	payments *PaymentService
	txRepo   *repository.TransactionRepository
	gateway  *payment.StubGateway
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	orderRepo := repository.NewOrderRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	orders := NewOrderService(orderRepo, txRepo)
	gw := payment.NewStubGateway()
	n := &recordingNotifier{}
	payments := NewPaymentService(orders, txRepo, gw, PaymentConfig{
		Currency:      "XAF",
		CallbackURL:   "http://localhost:5000/api/payments/callback",
		WebhookSecret: testWebhookSecret,
	}, n, nil, nil)
	return &fixture{db: db, orders: orders, payments: payments, txRepo: txRepo, gateway: gw, notifier: n}
}

func sampleOrder() OrderInput {
	return OrderInput{
		CustomerName:    "Ada Nkemelu",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "+237600000000",
		DeliveryAddress: "Rue Joss, Douala",
		Items: []OrderItemInput{
			{ProductID: "gas-12kg", Quantity: 2, UnitPrice: 5000},
			{ProductID: "regulator", Quantity: 1, UnitPrice: 1500},
		},
	}
}

func sampleInitialize() InitializeInput {
	o := sampleOrder()
	return InitializeInput{
		Amount:    11500,
		Name:      o.CustomerName,
		Email:     o.CustomerEmail,
		Phone:     o.CustomerPhone,
		OrderData: &o,
	}
}

func (f *fixture) initialize(t *testing.T) *InitializeResult {
	t.Helper()
	res, err := f.payments.InitializePayment(context.Background(), sampleInitialize())
	require.NoError(t, err)
	return res
}

func (f *fixture) statuses(t *testing.T, ref string) (txStatus, orderStatus string) {
	t.Helper()
	var tx models.Transaction
	require.NoError(t, f.db.Where("reference = ?", ref).First(&tx).Error)
	require.NotNil(t, tx.OrderID)
	var o models.Order
	require.NoError(t, f.db.First(&o, *tx.OrderID).Error)
	return tx.Status, o.Status
}

func (f *fixture) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
