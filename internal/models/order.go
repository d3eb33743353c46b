package models

import "time"

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	CustomerName    string      `gorm:"size:255;not null" json:"customerName"`
	CustomerEmail   string      `gorm:"size:255;not null;index" json:"customerEmail"`
	CustomerPhone   string      `gorm:"size:32;not null" json:"customerPhone"`
	DeliveryAddress string      `gorm:"type:text;not null" json:"deliveryAddress"`
	PaymentMethod   string      `gorm:"size:32" json:"paymentMethod"`
	TotalAmount     int64       `gorm:"not null" json:"totalAmount"`
	Status          string      `gorm:"size:20;not null;index" json:"status"` // pending, pending_payment, paid, failed_payment
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem rows are written with their order and never updated.
type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"orderId"`
	ProductID string `gorm:"size:64;not null;index" json:"productId"`
	Quantity  int    `gorm:"not null" json:"quantity"`
	UnitPrice int64  `gorm:"not null" json:"unitPrice"`

	Product *Product `gorm:"foreignKey:ProductID;references:ID" json:"-"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is UnitPrice x Quantity.
func (i OrderItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}
