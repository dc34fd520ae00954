package payments

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// Gateway event types this system reconciles. Everything else is a
// forward-compatible no-op.
const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"
)

var ErrMalformedEvent = errors.New("malformed webhook event")

// Envelope is the outer shape of every webhook delivery: an event type
// string plus a payload whose shape depends on the type.
type Envelope struct {
	ID      string          `json:"id"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// PaymentEntity is the gateway's payment object carried by capture and
// failure events under payload.payment.entity.
type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
}

// RefundEntity is the gateway's refund object carried by refund events
// under payload.refund.entity. PaymentID is the gateway payment id, not
// the order id.
type RefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
}

type payloadBody struct {
	Payment *struct {
		Entity PaymentEntity `json:"entity"`
	} `json:"payment"`
	Refund *struct {
		Entity RefundEntity `json:"entity"`
	} `json:"refund"`
}

// ParseEnvelope decodes the outer event envelope from the raw body.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedEvent)
	}
	return &env, nil
}

// EventID returns the gateway event identifier for the delivery. When the
// gateway omits an explicit id the raw body hash stands in for it, which
// keeps retried deliveries of the same body idempotent.
func (e *Envelope) EventID(body []byte) string {
	if e.ID != "" {
		return e.ID
	}
	sum := sha256.Sum256(body)
	return "evt_" + hex.EncodeToString(sum[:16])
}

// PaymentEntity extracts payload.payment.entity from a capture or failure event.
func (e *Envelope) PaymentEntity() (*PaymentEntity, error) {
	var p payloadBody
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if p.Payment == nil || p.Payment.Entity.OrderID == "" {
		return nil, fmt.Errorf("%w: missing payment entity", ErrMalformedEvent)
	}
	return &p.Payment.Entity, nil
}

// RefundEntity extracts payload.refund.entity from a refund event.
func (e *Envelope) RefundEntity() (*RefundEntity, error) {
	var p payloadBody
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if p.Refund == nil || p.Refund.Entity.PaymentID == "" {
		return nil, fmt.Errorf("%w: missing refund entity", ErrMalformedEvent)
	}
	return &p.Refund.Entity, nil
}
