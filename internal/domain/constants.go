package domain

const (
	OrderStatusPending        = "pending"
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusFailedPayment  = "failed_payment"
)

const (
	TransactionStatusPending  = "pending"
	TransactionStatusComplete = "complete"
	TransactionStatusFailed   = "failed"
)

const (
	PaymentMethodCashOnDelivery = "cash_on_delivery"
	PaymentMethodNotchPay       = "notchpay"
)

// ReferencePrefix starts every transaction reference: gasorder-<orderId>-<epochMillis>.
const ReferencePrefix = "gasorder"

const (
	WebhookEventPaymentComplete = "payment.complete"
	WebhookEventPaymentFailed   = "payment.failed"
)

// Reconciliation channels, used for logs and metrics.
const (
	ChannelVerify   = "verify"
	ChannelWebhook  = "webhook"
	ChannelCallback = "callback"
	ChannelReaper   = "reaper"
	ChannelAdmin    = "admin"
)

const RoleAdmin = "ADMIN"
