package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"roamly/internal/shared/config"
)

var (
	// ErrGatewayUnavailable indicates a transport-level failure (timeout,
	// connection refused). The caller must not assume the call took effect.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// Error is a structured rejection returned by the gateway API
// (bad request, already refunded, insufficient captured amount).
type Error struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error %s (%d): %s", e.Code, e.StatusCode, e.Description)
}

// Order is the gateway-side record of an intent to collect funds.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Payment mirrors the gateway's view of a payment attempt.
type Payment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
}

// Refund is the gateway's record of a processed refund.
type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
}

// Client issues order, payment and refund calls against the external
// payment processor. It is a stateless leaf dependency; all amounts are
// minor currency units.
type Client interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
	CreateRefund(ctx context.Context, paymentID string, amount int64) (*Refund, error)
}

type client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// NewClient creates a gateway client with a bounded request timeout.
func NewClient(cfg *config.Config) Client {
	timeout := cfg.Gateway.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &client{
		baseURL:   cfg.Gateway.BaseURL,
		keyID:     cfg.Gateway.KeyID,
		keySecret: cfg.Gateway.KeySecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	body := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	var order Order
	if err := c.do(ctx, http.MethodPost, "/v1/orders", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *client) CreateRefund(ctx context.Context, paymentID string, amount int64) (*Refund, error) {
	body := map[string]interface{}{}
	if amount > 0 {
		body["amount"] = amount
	}

	var refund Refund
	path := fmt.Sprintf("/v1/payments/%s/refund", paymentID)
	if err := c.do(ctx, http.MethodPost, path, body, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (c *client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode gateway request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	gwErr := &Error{StatusCode: resp.StatusCode}

	// The gateway wraps rejections in {"error": {"code": ..., "description": ...}}
	var envelope struct {
		Error Error `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&envelope); err == nil && envelope.Error.Code != "" {
		gwErr.Code = envelope.Error.Code
		gwErr.Description = envelope.Error.Description
		return gwErr
	}

	gwErr.Code = "UNKNOWN"
	gwErr.Description = http.StatusText(resp.StatusCode)
	return gwErr
}
