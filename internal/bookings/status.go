package bookings

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusFailed         Status = "FAILED"
	StatusRefunded       Status = "REFUNDED"
	StatusCancelled      Status = "CANCELLED"
	StatusCompleted      Status = "COMPLETED"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusConfirmed, StatusFailed,
		StatusRefunded, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanBeCancelled reports whether a customer may cancel a booking in this
// state. Only bookings that never collected funds qualify; anything captured
// goes through the refund path instead.
func (s Status) CanBeCancelled() bool {
	return s == StatusPendingPayment
}

// IsTerminal reports whether the booking has reached a final state
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFailed, StatusRefunded, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}
