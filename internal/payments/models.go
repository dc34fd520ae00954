package payments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment links a gateway order to a booking. The order id is the primary
// lookup key at creation time; the gateway payment id is attached on capture
// and becomes the lookup key for refunds.
type Payment struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BookingID        uuid.UUID `json:"booking_id" gorm:"type:uuid;not null;index"`
	OrderID          string    `json:"order_id" gorm:"not null;uniqueIndex:ux_payments_order_id"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty" gorm:"index:idx_payments_gateway_payment_id"`
	Amount           int64     `json:"amount" gorm:"not null"` // minor currency units
	Currency         string    `json:"currency" gorm:"not null;default:'INR'"`
	Status           Status    `json:"status" gorm:"not null;default:'CREATED'"`
	Method           string    `json:"method,omitempty"`
	RefundID         string    `json:"refund_id,omitempty"`
	RefundAmount     int64     `json:"refund_amount,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate hook to generate UUID
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// WebhookEvent is the idempotency ledger. One row per gateway event id;
// the unique index on EventID is what makes duplicate deliveries collapse
// to a single applied transition.
type WebhookEvent struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID     string    `json:"event_id" gorm:"not null;uniqueIndex:ux_webhook_events_event_id"`
	EventType   string    `json:"event_type" gorm:"not null"`
	ProcessedAt time.Time `json:"processed_at" gorm:"not null"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// BeforeCreate hook to generate UUID
func (e *WebhookEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
