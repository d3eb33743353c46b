package service

import (
	"context"
	"math"
	"testing"

	"gasdepot/internal/domain"
	"gasdepot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_TotalIsComputedServerSide(t *testing.T) {
	f := newFixture(t)
	in := sampleOrder()
	in.TotalAmount = 1

	o, err := f.orders.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	assert.Equal(t, int64(11500), o.TotalAmount)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Equal(t, domain.PaymentMethodCashOnDelivery, o.PaymentMethod)
	assert.Len(t, o.Items, 2)
	assert.EqualValues(t, 2, f.countRows(t, &models.OrderItem{}))
}

func TestCreateOrder_ValidationPersistsNothing(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*OrderInput)
		msg    string
	}{
		{"missing name", func(in *OrderInput) { in.CustomerName = "  " }, "missing customer info"},
		{"missing email", func(in *OrderInput) { in.CustomerEmail = "" }, "missing customer info"},
		{"missing phone", func(in *OrderInput) { in.CustomerPhone = "" }, "missing customer info"},
		{"missing address", func(in *OrderInput) { in.DeliveryAddress = "" }, "missing customer info"},
		{"no items", func(in *OrderInput) { in.Items = nil }, "empty order"},
		{"zero quantity", func(in *OrderInput) { in.Items[0].Quantity = 0 }, "invalid order item"},
		{"negative price", func(in *OrderInput) { in.Items[1].UnitPrice = -1 }, "invalid order item"},
		{"blank product", func(in *OrderInput) { in.Items[0].ProductID = "" }, "invalid order item"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			in := sampleOrder()
			tc.mutate(&in)

			_, err := f.orders.CreateOrder(context.Background(), in)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindValidation))
			assert.Equal(t, tc.msg, domain.PublicMessage(err))
			assert.Zero(t, f.countRows(t, &models.Order{}))
			assert.Zero(t, f.countRows(t, &models.OrderItem{}))
		})
	}
}

func TestComputeTotal(t *testing.T) {
	cases := []struct {
		name  string
		items []models.OrderItem
		total int64
		msg   string
	}{
		{"no items", nil, 0, ""},
		{"mixed lines", []models.OrderItem{
			{Quantity: 3, UnitPrice: 4000},
			{Quantity: 1, UnitPrice: 1000},
			{Quantity: 5, UnitPrice: 0},
		}, 13000, ""},
		{"exactly max", []models.OrderItem{{Quantity: 1, UnitPrice: math.MaxInt64}}, math.MaxInt64, ""},
		{"line overflows", []models.OrderItem{{Quantity: 2, UnitPrice: math.MaxInt64/2 + 1}}, 0, "order total too large"},
		{"sum overflows", []models.OrderItem{
			{Quantity: 1, UnitPrice: math.MaxInt64},
			{Quantity: 1, UnitPrice: 1},
		}, 0, "order total too large"},
		{"negative price", []models.OrderItem{{Quantity: 1, UnitPrice: -1}}, 0, "invalid order item"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total, err := ComputeTotal(tc.items)
			if tc.msg != "" {
				require.Error(t, err)
				assert.True(t, domain.IsKind(err, domain.KindValidation))
				assert.Equal(t, tc.msg, domain.PublicMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.total, total)
		})
	}
}

func TestCreateOrder_OverflowingTotalIsRejected(t *testing.T) {
	f := newFixture(t)
	cases := map[string][]OrderItemInput{
		"line wraps":     {{ProductID: "gas-12kg", Quantity: 2, UnitPrice: math.MaxInt64/2 + 1}},
		"quantity wraps": {{ProductID: "gas-12kg", Quantity: 8, UnitPrice: 1 << 60}, {ProductID: "regulator", Quantity: 1, UnitPrice: 1000}},
		"sum exceeds":    {{ProductID: "gas-12kg", Quantity: 1, UnitPrice: math.MaxInt64}, {ProductID: "regulator", Quantity: 1, UnitPrice: 1}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			in := sampleOrder()
			in.Items = items
			o, err := f.orders.CreateOrder(context.Background(), in)
			require.Error(t, err)
			assert.Nil(t, o)
			assert.True(t, domain.IsKind(err, domain.KindValidation))
		})
	}
	assert.Zero(t, f.countRows(t, &models.Order{}))
}

func TestGetOrderByTransactionReference(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&models.Product{
		ID: "gas-12kg", Name: "12.5kg Gas Bottle", Image: "/img/12kg.png", Price: 5000, IsGasBottle: true,
	}).Error)
	res := f.initialize(t)

	view, err := f.orders.GetOrderByTransactionReference(context.Background(), res.Reference)
	require.NoError(t, err)
	assert.Equal(t, res.OrderID, view.ID)
	assert.Equal(t, res.Reference, view.Reference)
	assert.Equal(t, domain.OrderStatusPendingPayment, view.Status)
	assert.Equal(t, int64(11500), view.TotalAmount)
	require.Len(t, view.Items, 2)

	byID := map[string]OrderItemView{}
	for _, it := range view.Items {
		byID[it.ProductID] = it
	}
	gas := byID["gas-12kg"]
	assert.Equal(t, "12.5kg Gas Bottle", gas.Name)
	assert.Equal(t, "/img/12kg.png", gas.Image)
	assert.True(t, gas.IsGasBottle)
	assert.Equal(t, 2, gas.Quantity)
	assert.Equal(t, int64(5000), gas.UnitPrice)

	// No catalog row: the product id stands in for the name.
	reg := byID["regulator"]
	assert.Equal(t, "regulator", reg.Name)
	assert.False(t, reg.IsGasBottle)
}

func TestGetOrderByTransactionReference_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.GetOrderByTransactionReference(context.Background(), "gasorder-404-1")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	require.NoError(t, f.txRepo.Create(context.Background(), &models.Transaction{
		Reference: "orphan", Status: domain.TransactionStatusPending,
	}))
	_, err = f.orders.GetOrderByTransactionReference(context.Background(), "orphan")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
