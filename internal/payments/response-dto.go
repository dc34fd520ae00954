package payments

// Webhook acknowledgment statuses returned to the gateway
const (
	AckSuccess          = "success"
	AckIgnored          = "ignored"
	AckAlreadyProcessed = "already_processed"
)

// CreateOrderResponse gives the client everything needed to initiate
// payment against the gateway order
type CreateOrderResponse struct {
	OrderID          string `json:"orderId"`
	BookingID        string `json:"bookingId"`
	Amount           int64  `json:"amount"` // minor units
	Currency         string `json:"currency"`
	GatewayPublicKey string `json:"gatewayPublicKey"`
}

// RefundResponse reports the refund back in major currency units
type RefundResponse struct {
	RefundID     string  `json:"refundId"`
	RefundAmount float64 `json:"refundAmount"`
	Status       string  `json:"status"`
	Warning      string  `json:"warning,omitempty"`
}

// WebhookResult is the internal outcome of processing one delivery
type WebhookResult struct {
	Status    string `json:"status"`
	EventID   string `json:"-"`
	EventType string `json:"-"`
}
