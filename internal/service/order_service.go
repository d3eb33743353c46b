package service

import (
	"context"
	"math"
	"strings"

	"gasdepot/internal/domain"
	"gasdepot/internal/models"
	"gasdepot/internal/repository"
)

type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// OrderInput is the customer order as submitted by the storefront. Any
// client-computed total is ignored.
type OrderInput struct {
	CustomerName    string           `json:"customerName"`
	CustomerEmail   string           `json:"customerEmail"`
	CustomerPhone   string           `json:"customerPhone"`
	DeliveryAddress string           `json:"deliveryAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
	Items           []OrderItemInput `json:"items"`
	TotalAmount     int64            `json:"totalAmount,omitempty"`
}

type OrderItemView struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	IsGasBottle bool   `json:"isGasBottle"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
}

// OrderView is an order joined with its catalog products, as shown on the
// confirmation page.
type OrderView struct {
	ID                uint            `json:"id"`
	CustomerName      string          `json:"customerName"`
	CustomerEmail     string          `json:"customerEmail"`
	CustomerPhone     string          `json:"customerPhone"`
	DeliveryAddress   string          `json:"deliveryAddress"`
	PaymentMethod     string          `json:"paymentMethod"`
	TotalAmount       int64           `json:"totalAmount"`
	Status            string          `json:"status"`
	CreatedAt         string          `json:"createdAt"`
	Reference         string          `json:"reference"`
	TransactionStatus string          `json:"transactionStatus"`
	Items             []OrderItemView `json:"items"`
}

type OrderService struct {
	orderRepo *repository.OrderRepository
	txRepo    *repository.TransactionRepository
}

func NewOrderService(orderRepo *repository.OrderRepository, txRepo *repository.TransactionRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, txRepo: txRepo}
}

// CreateOrder validates and stores a cash-on-delivery style order with status pending.
func (s *OrderService) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	return s.create(ctx, in, domain.OrderStatusPending)
}

func (s *OrderService) create(ctx context.Context, in OrderInput, status string) (*models.Order, error) {
	o, err := BuildOrder(in, status)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// BuildOrder validates in and returns the unsaved order with its server-side total.
func BuildOrder(in OrderInput, status string) (*models.Order, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	if in.CustomerName == "" || in.CustomerEmail == "" || in.CustomerPhone == "" || in.DeliveryAddress == "" {
		return nil, domain.Validation("missing customer info")
	}
	if len(in.Items) == 0 {
		return nil, domain.Validation("empty order")
	}
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity < 1 || it.UnitPrice < 0 {
			return nil, domain.Validation("invalid order item")
		}
		if it.UnitPrice > math.MaxInt64/int64(it.Quantity) {
			return nil, domain.Validation("invalid order item")
		}
		items = append(items, models.OrderItem{
			ProductID: strings.TrimSpace(it.ProductID),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	total, err := ComputeTotal(items)
	if err != nil {
		return nil, err
	}
	method := in.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCashOnDelivery
	}
	return &models.Order{
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		DeliveryAddress: in.DeliveryAddress,
		PaymentMethod:   method,
		TotalAmount:     total,
		Status:          status,
		Items:           items,
	}, nil
}

var errTotalTooLarge = domain.Validation("order total too large")

// ComputeTotal sums unit price times quantity over items. Negative lines and
// totals that do not fit in an int64 are rejected.
func ComputeTotal(items []models.OrderItem) (int64, error) {
	var total int64
	for _, it := range items {
		if it.Quantity < 0 || it.UnitPrice < 0 {
			return 0, domain.Validation("invalid order item")
		}
		if it.Quantity > 0 && it.UnitPrice > math.MaxInt64/int64(it.Quantity) {
			return 0, errTotalTooLarge
		}
		line := it.LineTotal()
		if total > math.MaxInt64-line {
			return 0, errTotalTooLarge
		}
		total += line
	}
	return total, nil
}

// GetOrderByTransactionReference follows a transaction reference to its order.
func (s *OrderService) GetOrderByTransactionReference(ctx context.Context, reference string) (*OrderView, error) {
	tx, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if tx.OrderID == nil {
		return nil, domain.NotFound("order not found")
	}
	o, err := s.orderRepo.GetWithProducts(ctx, *tx.OrderID)
	if err != nil {
		return nil, err
	}
	view := &OrderView{
		ID:                o.ID,
		CustomerName:      o.CustomerName,
		CustomerEmail:     o.CustomerEmail,
		CustomerPhone:     o.CustomerPhone,
		DeliveryAddress:   o.DeliveryAddress,
		PaymentMethod:     o.PaymentMethod,
		TotalAmount:       o.TotalAmount,
		Status:            o.Status,
		CreatedAt:         o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Reference:         tx.Reference,
		TransactionStatus: tx.Status,
		Items:             make([]OrderItemView, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		iv := OrderItemView{
			ProductID: it.ProductID,
			Name:      it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
		if p := it.Product; p != nil {
			iv.Name = p.Name
			iv.Image = p.Image
			iv.IsGasBottle = p.IsGasBottle
		}
		view.Items = append(view.Items, iv)
	}
	return view, nil
}
