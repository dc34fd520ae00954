package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking defines the main booking structure. Status is owned by the
// reconciliation engine: after creation it is mutated only inside payment
// transactions or by the stale-pending sweep, never patched in isolation.
type Booking struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	TourID        uuid.UUID `gorm:"type:uuid;index;not null" json:"tour_id"`
	CustomerName  string    `gorm:"not null" json:"customer_name"`
	CustomerEmail string    `gorm:"not null" json:"customer_email"`
	CustomerPhone string    `gorm:"not null" json:"customer_phone"`
	StartDate     time.Time `gorm:"not null" json:"start_date"`
	Participants  int       `gorm:"not null" json:"participants"`
	// Total in minor currency units (paise); never a float
	TotalAmount int64  `gorm:"not null" json:"total_amount"`
	Currency    string `gorm:"type:varchar(3);default:'INR'" json:"currency"`
	Status      Status `gorm:"type:varchar(20);default:'PENDING_PAYMENT'" json:"status"`
	BookingRef  string `gorm:"unique;not null" json:"booking_ref"`
	// Gateway order id, attached once the order is created
	OrderID string `gorm:"index" json:"order_id,omitempty"`
	// Gateway payment id, attached on capture
	GatewayPaymentID string     `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

func (b *Booking) IsPendingPayment() bool {
	return b.Status == StatusPendingPayment
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}
