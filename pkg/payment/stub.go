package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
)

// StubGateway is an in-memory provider for development and tests. Payments start
// pending; SetStatus moves them.
type StubGateway struct {
	mu       sync.Mutex
	payments map[string]*ProviderTransaction
	// FailCreate makes CreatePayment return an APIError with this status code.
	FailCreate int
	// FailGet makes GetPaymentStatus return an APIError with this status code.
	FailGet int
	Created []CreatePaymentRequest
}

func NewStubGateway() *StubGateway {
	return &StubGateway{payments: make(map[string]*ProviderTransaction)}
}

func (s *StubGateway) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*ProviderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != 0 {
		return nil, &APIError{Operation: "create payment", StatusCode: s.FailCreate, Body: http.StatusText(s.FailCreate)}
	}
	s.Created = append(s.Created, req)
	trx := &ProviderTransaction{
		Reference:         "trx.stub_" + req.Reference,
		MerchantReference: req.Reference,
		Status:            "pending",
		Amount:            req.Amount,
		Currency:          req.Currency,
	}
	s.payments[req.Reference] = trx
	return s.response(req.Reference, trx, "https://pay.stub.local/"+req.Reference)
}

func (s *StubGateway) GetPaymentStatus(ctx context.Context, reference string) (*ProviderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGet != 0 {
		return nil, &APIError{Operation: "get payment", StatusCode: s.FailGet, Body: http.StatusText(s.FailGet)}
	}
	trx, ok := s.payments[reference]
	if !ok {
		for _, t := range s.payments {
			if t.Reference == reference {
				trx, ok = t, true
				break
			}
		}
	}
	if !ok {
		return nil, &APIError{Operation: "get payment", StatusCode: http.StatusNotFound, Body: "payment not found"}
	}
	return s.response(reference, trx, "")
}

// SetStatus sets the provider-side status of a payment created earlier, or
// registers one that was never created through the stub.
func (s *StubGateway) SetStatus(reference, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trx, ok := s.payments[reference]
	if !ok {
		trx = &ProviderTransaction{Reference: "trx.stub_" + reference, MerchantReference: reference}
		s.payments[reference] = trx
	}
	trx.Status = status
}

func (s *StubGateway) response(reference string, trx *ProviderTransaction, authURL string) (*ProviderResponse, error) {
	body := map[string]interface{}{
		"status":      "Accepted",
		"code":        200,
		"transaction": trx,
	}
	if authURL != "" {
		body["authorization_url"] = authURL
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return ParseProviderResponse(raw, reference)
}
