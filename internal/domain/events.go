package domain

import "time"

// StatusUpdate describes a transaction reaching a terminal state.
type StatusUpdate struct {
	Reference         string    `json:"reference"`
	TransactionStatus string    `json:"transactionStatus"`
	OrderID           *uint     `json:"orderId,omitempty"`
	OrderStatus       string    `json:"orderStatus,omitempty"`
	Channel           string    `json:"channel"`
	At                time.Time `json:"at"`
}
