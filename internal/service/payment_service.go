package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gasdepot/internal/domain"
	"gasdepot/internal/metrics"
	"gasdepot/internal/models"
	"gasdepot/internal/repository"
	"gasdepot/pkg/payment"

	"go.uber.org/zap"
)

// StatusNotifier receives every applied transition, e.g. to push it to
// connected storefront clients.
type StatusNotifier interface {
	PublishStatus(update domain.StatusUpdate)
}

type PaymentConfig struct {
	Currency      string
	CallbackURL   string
	WebhookSecret string
}

type InitializeInput struct {
	Amount      int64       `json:"amount"`
	Currency    string      `json:"currency"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Description string      `json:"description"`
	OrderData   *OrderInput `json:"orderData"`
}

type InitializeResult struct {
	Reference string
	OrderID   uint
	Response  *payment.ProviderResponse
}

// Outcome reports what a reconciliation did.
type Outcome struct {
	Found             bool
	Applied           bool
	Reference         string
	TransactionStatus string
}

// PaymentService initializes NotchPay payments and reconciles their outcome
// from the verify, webhook and callback channels.
type PaymentService struct {
	orders   *OrderService
	txRepo   *repository.TransactionRepository
	gateway  payment.Gateway
	cfg      PaymentConfig
	notifier StatusNotifier
	audit    *repository.AuditLogRepository
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewPaymentService(
	orders *OrderService,
	txRepo *repository.TransactionRepository,
	gateway payment.Gateway,
	cfg PaymentConfig,
	notifier StatusNotifier,
	m *metrics.Metrics,
	log *zap.Logger,
) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "XAF"
	}
	return &PaymentService{
		orders:   orders,
		txRepo:   txRepo,
		gateway:  gateway,
		cfg:      cfg,
		notifier: notifier,
		metrics:  m,
		log:      log.Named("payments"),
		now:      time.Now,
	}
}

// SetClock replaces the time source used for references and the reaper cutoff.
func (s *PaymentService) SetClock(now func() time.Time) {
	s.now = now
}

// SetAuditLog records every applied transition in repo.
func (s *PaymentService) SetAuditLog(repo *repository.AuditLogRepository) {
	s.audit = repo
}

// NewReference builds the merchant reference for an order.
func NewReference(orderID uint, at time.Time) string {
	return fmt.Sprintf("%s-%d-%d", domain.ReferencePrefix, orderID, at.UnixMilli())
}

// InitializePayment stores the order and a pending transaction, then opens the
// payment at the provider. A provider failure leaves both rows pending.
func (s *PaymentService) InitializePayment(ctx context.Context, in InitializeInput) (*InitializeResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Amount <= 0 {
		return nil, domain.Validation("amount must be positive")
	}
	if in.Name == "" || in.Email == "" || in.Phone == "" {
		return nil, domain.Validation("missing customer info")
	}
	if in.OrderData == nil {
		return nil, domain.Validation("missing order data")
	}
	orderIn := *in.OrderData
	if orderIn.CustomerName == "" {
		orderIn.CustomerName = in.Name
	}
	if orderIn.CustomerEmail == "" {
		orderIn.CustomerEmail = in.Email
	}
	if orderIn.CustomerPhone == "" {
		orderIn.CustomerPhone = in.Phone
	}
	orderIn.PaymentMethod = domain.PaymentMethodNotchPay

	o, err := BuildOrder(orderIn, domain.OrderStatusPendingPayment)
	if err != nil {
		return nil, err
	}
	if o.TotalAmount != in.Amount {
		return nil, domain.Validation("amount does not match order total")
	}
	currency := in.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}

	if err := s.orders.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	ref := NewReference(o.ID, s.now())
	orderID := o.ID
	tx := &models.Transaction{
		Reference:     ref,
		Amount:        in.Amount,
		Currency:      currency,
		CustomerName:  in.Name,
		CustomerEmail: in.Email,
		CustomerPhone: in.Phone,
		Status:        domain.TransactionStatusPending,
		OrderID:       &orderID,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	description := in.Description
	if description == "" {
		description = fmt.Sprintf("Order #%d", o.ID)
	}
	resp, err := s.createPayment(ctx, payment.CreatePaymentRequest{
		Amount:   in.Amount,
		Currency: currency,
		Customer: payment.Customer{
			Name:  in.Name,
			Email: in.Email,
			Phone: in.Phone,
		},
		Description: description,
		CallbackURL: s.cfg.CallbackURL,
		Reference:   ref,
	})
	if err != nil {
		s.log.Error("create payment failed", zap.String("reference", ref), zap.Uint("order_id", o.ID), zap.Error(err))
		return nil, domain.Gateway("payment provider unavailable", err)
	}
	if err := s.txRepo.SetNotchData(ctx, ref, resp.Raw); err != nil {
		s.log.Warn("store provider response", zap.String("reference", ref), zap.Error(err))
	}
	s.log.Info("payment initialized", zap.String("reference", ref), zap.Uint("order_id", o.ID), zap.Int64("amount", in.Amount))
	return &InitializeResult{Reference: ref, OrderID: o.ID, Response: resp}, nil
}

// Verify asks the provider for the payment status and applies it.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*payment.ProviderResponse, error) {
	return s.verify(ctx, reference, domain.ChannelVerify)
}

// Reconcile is Verify triggered from the back office.
func (s *PaymentService) Reconcile(ctx context.Context, reference string) (*payment.ProviderResponse, error) {
	return s.verify(ctx, reference, domain.ChannelAdmin)
}

func (s *PaymentService) verify(ctx context.Context, reference, channel string) (*payment.ProviderResponse, error) {
	if _, err := s.txRepo.GetByReference(ctx, reference); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			s.metrics.ObserveReconcile(channel, "unknown_reference")
		}
		return nil, err
	}
	resp, err := s.getPaymentStatus(ctx, reference)
	if err != nil {
		s.metrics.ObserveReconcile(channel, "gateway_error")
		return nil, domain.Gateway("payment provider unavailable", err)
	}
	if _, err := s.reconcile(ctx, channel, reference, SignalFromProviderStatus(resp.TransactionStatus()), resp.Raw); err != nil {
		return nil, err
	}
	return resp, nil
}

// WebhookResult describes how a webhook delivery was handled.
type WebhookResult struct {
	Ping      bool
	Ignored   bool
	Event     string
	Reference string
	Outcome   Outcome
}

type webhookEvent struct {
	Type  string                 `json:"type"`
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

var webhookReferenceKeys = []string{"merchant_reference", "trxref", "reference", "trxRef"}

// HandleWebhook authenticates and applies a provider event. An empty signature
// is treated as a connectivity ping.
func (s *PaymentService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*WebhookResult, error) {
	if signature == "" {
		s.log.Info("webhook ping without signature")
		return &WebhookResult{Ping: true}, nil
	}
	if !payment.VerifySignature(rawBody, signature, s.cfg.WebhookSecret) {
		s.metrics.IncWebhookRejection()
		s.log.Warn("webhook signature rejected", zap.Int("body_bytes", len(rawBody)))
		return nil, domain.Signature("invalid signature")
	}
	var ev webhookEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return nil, domain.Validation("invalid webhook payload")
	}
	eventType := ev.Type
	if eventType == "" {
		eventType = ev.Event
	}
	res := &WebhookResult{Event: eventType}
	sig, ok := SignalFromWebhookEvent(eventType)
	if !ok {
		res.Ignored = true
		s.log.Info("webhook event ignored", zap.String("event", eventType))
		return res, nil
	}
	res.Reference = webhookReference(ev.Data)
	if res.Reference == "" {
		res.Ignored = true
		s.log.Warn("webhook without reference", zap.String("event", eventType))
		return res, nil
	}
	out, err := s.reconcile(ctx, domain.ChannelWebhook, res.Reference, sig, rawBody)
	if err != nil {
		return nil, err
	}
	res.Outcome = out
	return res, nil
}

func webhookReference(data map[string]interface{}) string {
	for _, k := range webhookReferenceKeys {
		if v, ok := data[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// CallbackResult drives the page shown after the provider redirects back.
type CallbackResult struct {
	Reference string
	Success   bool
	Status    string
}

// HandleCallback re-checks the payment the customer was redirected back for.
func (s *PaymentService) HandleCallback(ctx context.Context, queryReference string) (*CallbackResult, error) {
	queryReference = strings.TrimSpace(queryReference)
	if queryReference == "" {
		return nil, domain.Validation("missing reference")
	}
	resp, err := s.getPaymentStatus(ctx, queryReference)
	if err != nil {
		s.metrics.ObserveReconcile(domain.ChannelCallback, "gateway_error")
		return nil, domain.Gateway("payment provider unavailable", err)
	}
	ref := resp.EchoedReference()
	if _, err := s.reconcile(ctx, domain.ChannelCallback, ref, SignalFromProviderStatus(resp.TransactionStatus()), resp.Raw); err != nil {
		return nil, err
	}
	return &CallbackResult{Reference: ref, Success: resp.IsComplete(), Status: resp.TransactionStatus()}, nil
}

// reconcile applies sig to the transaction under a compare-and-swap. Unknown
// references are reported through Outcome.Found, not as errors.
func (s *PaymentService) reconcile(ctx context.Context, channel, reference string, sig Signal, raw []byte) (Outcome, error) {
	out := Outcome{Reference: reference}
	tx, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			s.metrics.ObserveReconcile(channel, "unknown_reference")
			s.log.Info("reconcile unknown reference", zap.String("channel", channel), zap.String("reference", reference))
			return out, nil
		}
		return out, err
	}
	out.Found = true
	out.TransactionStatus = tx.Status

	tr := ApplyProviderStatus(tx.Status, sig)
	if !tr.Changed {
		if tx.Status == domain.TransactionStatusFailed && sig == SignalComplete {
			s.metrics.IncLateCompletion()
			s.log.Warn("complete signal for failed transaction",
				zap.String("channel", channel), zap.String("reference", reference))
		}
		s.metrics.ObserveReconcile(channel, "unchanged")
		return out, nil
	}

	applied, err := s.txRepo.CompleteTransition(ctx, reference, tr.TransactionStatus, tr.OrderStatus, raw)
	if err != nil {
		s.metrics.ObserveReconcile(channel, "error")
		return out, err
	}
	if !applied {
		// Another channel finished first; report what it stored.
		if cur, err := s.txRepo.GetByReference(ctx, reference); err == nil {
			out.TransactionStatus = cur.Status
		}
		s.metrics.ObserveReconcile(channel, "lost_race")
		return out, nil
	}
	out.Applied = true
	out.TransactionStatus = tr.TransactionStatus
	s.metrics.ObserveReconcile(channel, tr.TransactionStatus)
	s.log.Info("transaction reconciled",
		zap.String("channel", channel),
		zap.String("reference", reference),
		zap.String("status", tr.TransactionStatus),
		zap.String("order_status", tr.OrderStatus))

	s.recordTransition(ctx, channel, reference, tr)
	if s.notifier != nil {
		s.notifier.PublishStatus(domain.StatusUpdate{
			Reference:         reference,
			TransactionStatus: tr.TransactionStatus,
			OrderID:           tx.OrderID,
			OrderStatus:       tr.OrderStatus,
			Channel:           channel,
			At:                s.now(),
		})
	}
	return out, nil
}

func (s *PaymentService) recordTransition(ctx context.Context, channel, reference string, tr Transition) {
	if s.audit == nil {
		return
	}
	meta, _ := json.Marshal(map[string]string{
		"from":        domain.TransactionStatusPending,
		"to":          tr.TransactionStatus,
		"orderStatus": tr.OrderStatus,
	})
	err := s.audit.Create(ctx, &models.AuditLog{
		Action:     "transaction." + tr.TransactionStatus,
		Resource:   "transaction",
		ResourceID: reference,
		Channel:    channel,
		Metadata:   meta,
	})
	if err != nil {
		s.log.Warn("audit transition", zap.String("reference", reference), zap.Error(err))
	}
}

// TransactionStatus returns the stored status of a reference.
func (s *PaymentService) TransactionStatus(ctx context.Context, reference string) (*models.Transaction, error) {
	return s.txRepo.GetByReference(ctx, reference)
}

func (s *PaymentService) createPayment(ctx context.Context, req payment.CreatePaymentRequest) (*payment.ProviderResponse, error) {
	start := time.Now()
	resp, err := s.gateway.CreatePayment(ctx, req)
	s.metrics.ObserveGateway("create_payment", gatewayResult(err), time.Since(start).Seconds())
	return resp, err
}

func (s *PaymentService) getPaymentStatus(ctx context.Context, reference string) (*payment.ProviderResponse, error) {
	start := time.Now()
	resp, err := s.gateway.GetPaymentStatus(ctx, reference)
	s.metrics.ObserveGateway("get_payment", gatewayResult(err), time.Since(start).Seconds())
	return resp, err
}

func gatewayResult(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *payment.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return fmt.Sprintf("http_%d", apiErr.StatusCode)
	}
	return "transport_error"
}
