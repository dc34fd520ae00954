package payments

import "time"

// BookingData carries the customer-facing booking details of an order
// creation request. TotalAmount is a decimal major-currency value; it is
// converted to minor units before anything touches the gateway.
type BookingData struct {
	CustomerName  string    `json:"customerName" validate:"required,min=2,max=100"`
	CustomerEmail string    `json:"customerEmail" validate:"required,email"`
	CustomerPhone string    `json:"customerPhone" validate:"required,min=8,max=20"`
	TourID        string    `json:"tourId" validate:"required,uuid"`
	StartDate     time.Time `json:"startDate" validate:"required"`
	Participants  int       `json:"participants" validate:"required,min=1,max=50"`
	TotalAmount   float64   `json:"totalAmount" validate:"required,gt=0"`
}

// CreateOrderRequest is the inbound order-creation body
type CreateOrderRequest struct {
	BookingData BookingData `json:"bookingData" validate:"required"`
}

// RefundRequest is the admin-only refund body. PaymentID is the gateway
// payment identifier. Amount is optional minor units; absent means a full
// refund of the captured amount.
type RefundRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
	Amount    *int64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Reason    string `json:"reason,omitempty" validate:"omitempty,max=255"`
}
