package bookings

import "testing"

func TestStatusIsValid(t *testing.T) {
	valid := []Status{
		StatusPendingPayment, StatusConfirmed, StatusFailed,
		StatusRefunded, StatusCancelled, StatusCompleted,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}

	for _, s := range []Status{"", "UNKNOWN", "pending_payment"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestStatusCanBeCancelled(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPendingPayment, true},
		{StatusConfirmed, false}, // funds moved, only refund applies
		{StatusFailed, false},
		{StatusRefunded, false},
		{StatusCancelled, false},
		{StatusCompleted, false},
	}

	for _, tt := range tests {
		if got := tt.status.CanBeCancelled(); got != tt.want {
			t.Errorf("%s.CanBeCancelled() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPendingPayment, false},
		{StatusConfirmed, false},
		{StatusFailed, true},
		{StatusRefunded, true},
		{StatusCancelled, true},
		{StatusCompleted, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
