package payments

// Status represents the lifecycle state of a payment
type Status string

const (
	StatusCreated  Status = "CREATED"
	StatusCaptured Status = "CAPTURED"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
)

// IsValid checks if the status is a valid payment status
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusCaptured, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// CanCapture reports whether a capture event may transition this payment.
// Only a payment still awaiting funds can be captured.
func (s Status) CanCapture() bool {
	return s == StatusCreated
}

// CanRefund reports whether a refund may be applied to this payment.
func (s Status) CanRefund() bool {
	return s == StatusCaptured
}

// IsTerminal returns true if no further gateway event can move this payment
func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusRefunded
}
