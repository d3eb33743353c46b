package models

import (
	"time"

	"gasdepot/internal/domain"

	"gorm.io/datatypes"
)

// Transaction links an order to one payment attempt at the provider. Reference is
// the correlation key shared with the provider and must never change once issued.
type Transaction struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Reference     string         `gorm:"size:128;uniqueIndex;not null" json:"reference"`
	Amount        int64          `gorm:"not null" json:"amount"`
	Currency      string         `gorm:"size:3;default:'XAF'" json:"currency"`
	CustomerName  string         `gorm:"size:255" json:"customerName"`
	CustomerEmail string         `gorm:"size:255" json:"customerEmail"`
	CustomerPhone string         `gorm:"size:32" json:"customerPhone"`
	Status        string         `gorm:"size:20;not null;index" json:"status"` // pending, complete, failed
	OrderID       *uint          `gorm:"index" json:"orderId"`
	NotchData     datatypes.JSON `json:"notchData"` // last raw provider payload
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`

	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) IsTerminal() bool {
	return t.Status != domain.TransactionStatusPending
}
