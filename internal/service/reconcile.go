package service

import (
	"strings"

	"gasdepot/internal/domain"
)

// Signal is what a provider reported about a payment, reduced to what the
// state machine needs.
type Signal int

const (
	SignalPending Signal = iota
	SignalComplete
	SignalFailed
)

func (s Signal) String() string {
	switch s {
	case SignalComplete:
		return "complete"
	case SignalFailed:
		return "failed"
	default:
		return "pending"
	}
}

var providerFailureStates = map[string]bool{
	"failed":    true,
	"canceled":  true,
	"cancelled": true,
	"expired":   true,
	"rejected":  true,
}

// SignalFromProviderStatus maps a provider transaction.status. Only "complete"
// means paid; unknown states stay pending.
func SignalFromProviderStatus(status string) Signal {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "complete" {
		return SignalComplete
	}
	if providerFailureStates[status] {
		return SignalFailed
	}
	return SignalPending
}

// SignalFromWebhookEvent maps a webhook event type. ok is false for events that
// carry no payment outcome.
func SignalFromWebhookEvent(event string) (sig Signal, ok bool) {
	switch event {
	case domain.WebhookEventPaymentComplete:
		return SignalComplete, true
	case domain.WebhookEventPaymentFailed:
		return SignalFailed, true
	}
	return SignalPending, false
}

// Transition is the result of applying a signal to a transaction.
type Transition struct {
	Changed           bool
	TransactionStatus string
	OrderStatus       string
}

// ApplyProviderStatus is the payment state machine. Only pending transactions
// move; terminal ones ignore every signal.
func ApplyProviderStatus(current string, sig Signal) Transition {
	if current != domain.TransactionStatusPending {
		return Transition{TransactionStatus: current}
	}
	switch sig {
	case SignalComplete:
		return Transition{Changed: true, TransactionStatus: domain.TransactionStatusComplete, OrderStatus: domain.OrderStatusPaid}
	case SignalFailed:
		return Transition{Changed: true, TransactionStatus: domain.TransactionStatusFailed, OrderStatus: domain.OrderStatusFailedPayment}
	}
	return Transition{TransactionStatus: current}
}
