package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const maxErrorBody = 512

// NotchPayClient issues payment requests to the NotchPay REST API.
type NotchPayClient struct {
	BaseURL    string
	PublicKey  string
	PrivateKey string
	client     *http.Client
	log        *zap.Logger
}

func NewNotchPayClient(baseURL, publicKey, privateKey string, timeout time.Duration, log *zap.Logger) *NotchPayClient {
	if baseURL == "" {
		baseURL = "https://api.notchpay.co"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NotchPayClient{
		BaseURL:    baseURL,
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		client:     &http.Client{Timeout: timeout},
		log:        log.Named("notchpay"),
	}
}

// CreatePayment opens a payment at NotchPay. It is not retried.
func (p *NotchPayClient) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*ProviderResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &APIError{Operation: "create payment", Err: err}
	}
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{Operation: "create payment", Err: err}
	}
	apiReq.Header.Set("Content-Type", "application/json")
	p.log.Debug("create payment", zap.String("reference", req.Reference), zap.Int64("amount", req.Amount), zap.String("callback", req.CallbackURL))
	raw, err := p.do(apiReq, "create payment")
	if err != nil {
		return nil, err
	}
	resp, err := ParseProviderResponse(raw, req.Reference)
	if err != nil {
		return nil, &APIError{Operation: "create payment", Err: err}
	}
	return resp, nil
}

// GetPaymentStatus fetches the provider's view of a payment by reference.
func (p *NotchPayClient) GetPaymentStatus(ctx context.Context, reference string) (*ProviderResponse, error) {
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/payments/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, &APIError{Operation: "get payment", Err: err}
	}
	raw, err := p.do(apiReq, "get payment")
	if err != nil {
		return nil, err
	}
	resp, err := ParseProviderResponse(raw, reference)
	if err != nil {
		return nil, &APIError{Operation: "get payment", Err: err}
	}
	p.log.Debug("payment status", zap.String("reference", reference), zap.String("status", resp.TransactionStatus()))
	return resp, nil
}

func (p *NotchPayClient) do(req *http.Request, op string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", p.PublicKey)
	if p.PrivateKey != "" {
		req.Header.Set("X-Grant", p.PrivateKey)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &APIError{Operation: op, Err: err}
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Operation: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.log.Warn("provider error", zap.String("operation", op), zap.Int("status", resp.StatusCode), zap.ByteString("body", truncate(respBody)))
		return nil, &APIError{Operation: op, StatusCode: resp.StatusCode, Body: string(truncate(respBody))}
	}
	return respBody, nil
}

func truncate(b []byte) []byte {
	if len(b) > maxErrorBody {
		return b[:maxErrorBody]
	}
	return b
}
