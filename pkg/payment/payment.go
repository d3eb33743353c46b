package payment

import (
	"context"
	"encoding/json"
	"fmt"
)

// StatusComplete is the only provider transaction status treated as paid.
const StatusComplete = "complete"

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type CreatePaymentRequest struct {
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Customer    Customer `json:"customer"`
	Description string   `json:"description,omitempty"`
	CallbackURL string   `json:"callback"`
	Reference   string   `json:"reference"`
}

// ProviderTransaction is the subset of the provider's nested transaction object
// the reconciler reads.
type ProviderTransaction struct {
	Reference         string `json:"reference"`
	MerchantReference string `json:"merchant_reference"`
	Trxref            string `json:"trxref"`
	Status            string `json:"status"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
}

// ProviderResponse keeps the provider's JSON body as received, plus the parsed
// fields needed for reconciliation.
type ProviderResponse struct {
	Raw              json.RawMessage
	Body             map[string]interface{}
	Reference        string
	AuthorizationURL string
	Transaction      *ProviderTransaction
}

// ParseProviderResponse decodes a provider JSON body. reference is the reference
// the request was made for.
func ParseProviderResponse(raw []byte, reference string) (*ProviderResponse, error) {
	var envelope struct {
		AuthorizationURL string               `json:"authorization_url"`
		Transaction      *ProviderTransaction `json:"transaction"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	body := map[string]interface{}{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	return &ProviderResponse{
		Raw:              json.RawMessage(raw),
		Body:             body,
		Reference:        reference,
		AuthorizationURL: envelope.AuthorizationURL,
		Transaction:      envelope.Transaction,
	}, nil
}

// TransactionStatus returns transaction.status, or "" when absent.
func (r *ProviderResponse) TransactionStatus() string {
	if r == nil || r.Transaction == nil {
		return ""
	}
	return r.Transaction.Status
}

// IsComplete reports whether the provider marked the payment complete.
func (r *ProviderResponse) IsComplete() bool {
	return r.TransactionStatus() == StatusComplete
}

// EchoedReference is the merchant reference as reported back by the provider,
// falling back to the provider's own reference and then to the request reference.
func (r *ProviderResponse) EchoedReference() string {
	if r == nil {
		return ""
	}
	if t := r.Transaction; t != nil {
		if t.MerchantReference != "" {
			return t.MerchantReference
		}
		if t.Reference != "" {
			return t.Reference
		}
	}
	return r.Reference
}

// WithReference returns the JSON body with the request reference added, as sent
// back to storefront clients.
func (r *ProviderResponse) WithReference() map[string]interface{} {
	out := make(map[string]interface{}, len(r.Body)+1)
	for k, v := range r.Body {
		out[k] = v
	}
	out["reference"] = r.Reference
	return out
}

// APIError is returned for transport failures and non-2xx provider responses.
type APIError struct {
	Operation  string
	StatusCode int // 0 when the request never got a response
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("notchpay %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("notchpay %s: %d %s", e.Operation, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

// Gateway is the outbound surface of the payment provider.
type Gateway interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*ProviderResponse, error)
	GetPaymentStatus(ctx context.Context, reference string) (*ProviderResponse, error)
}
