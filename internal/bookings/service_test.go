package bookings

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeBookingRepo struct {
	byID      map[uuid.UUID]*Booking
	cancelled []uuid.UUID
	expired   int64
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[uuid.UUID]*Booking)}
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, booking *Booking) error {
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	f.byID[booking.ID] = booking
	return nil
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetBookingByOrderID(ctx context.Context, orderID string) (*Booking, error) {
	for _, b := range f.byID {
		if b.OrderID == orderID {
			return b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (f *fakeBookingRepo) AttachOrderID(ctx context.Context, id uuid.UUID, orderID string) error {
	b, ok := f.byID[id]
	if !ok {
		return ErrBookingNotFound
	}
	b.OrderID = orderID
	return nil
}

func (f *fakeBookingRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	var result []Booking
	for _, b := range f.byID {
		if b.UserID == userID {
			result = append(result, *b)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeBookingRepo) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	var result []Booking
	for _, b := range f.byID {
		result = append(result, *b)
	}
	return result, int64(len(result)), nil
}

func (f *fakeBookingRepo) CancelPendingBooking(ctx context.Context, id uuid.UUID) error {
	b, ok := f.byID[id]
	if !ok {
		return ErrBookingNotFound
	}
	if b.Status != StatusPendingPayment {
		return ErrBookingNotFound // mirrors the status-validated update matching no rows
	}
	b.Status = StatusCancelled
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeBookingRepo) ExpireStalePending(ctx context.Context, olderThan time.Time, batchSize int) (int64, error) {
	var n int64
	for _, b := range f.byID {
		if b.Status == StatusPendingPayment && b.CreatedAt.Before(olderThan) {
			b.Status = StatusCancelled
			n++
		}
	}
	f.expired = n
	return n, nil
}

func validInput(t *testing.T) CreateBookingInput {
	t.Helper()
	return CreateBookingInput{
		TourID:        uuid.New(),
		CustomerName:  "Asha Iyer",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "+919876543210",
		StartDate:     time.Now().AddDate(0, 1, 0),
		Participants:  2,
		TotalAmount:   25000,
		Currency:      "INR",
	}
}

func TestCreatePendingBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)
	userID := uuid.New()

	booking, err := svc.CreatePendingBooking(context.Background(), userID, validInput(t))
	if err != nil {
		t.Fatalf("CreatePendingBooking failed: %v", err)
	}

	if booking.Status != StatusPendingPayment {
		t.Errorf("status = %s, want PENDING_PAYMENT", booking.Status)
	}
	if booking.UserID != userID {
		t.Error("user id not carried onto the booking")
	}

	refPattern := regexp.MustCompile(`^TRP-\d{8}-[A-Z]{6}$`)
	if !refPattern.MatchString(booking.BookingRef) {
		t.Errorf("booking ref %q does not match TRP-YYYYMMDD-XXXXXX", booking.BookingRef)
	}
}

func TestCreatePendingBookingValidation(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	tests := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{"zero amount", func(in *CreateBookingInput) { in.TotalAmount = 0 }},
		{"negative amount", func(in *CreateBookingInput) { in.TotalAmount = -100 }},
		{"zero participants", func(in *CreateBookingInput) { in.Participants = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(t)
			tt.mutate(&input)
			if _, err := svc.CreatePendingBooking(context.Background(), uuid.New(), input); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestBookingRefsAreUnique(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		b, err := svc.CreatePendingBooking(context.Background(), uuid.New(), validInput(t))
		if err != nil {
			t.Fatal(err)
		}
		if seen[b.BookingRef] {
			t.Fatalf("duplicate booking ref %q", b.BookingRef)
		}
		seen[b.BookingRef] = true
	}
}

func TestCancelBookingOwnership(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)
	owner := uuid.New()

	booking, err := svc.CreatePendingBooking(context.Background(), owner, validInput(t))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.CancelBooking(context.Background(), booking.ID, uuid.New()); err == nil {
		t.Error("a stranger must not cancel someone else's booking")
	}

	if err := svc.CancelBooking(context.Background(), booking.ID, owner); err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if booking.Status != StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", booking.Status)
	}
}

func TestCancelBookingRejectsNonPending(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)
	owner := uuid.New()

	booking, err := svc.CreatePendingBooking(context.Background(), owner, validInput(t))
	if err != nil {
		t.Fatal(err)
	}
	booking.Status = StatusConfirmed

	err = svc.CancelBooking(context.Background(), booking.ID, owner)
	if err == nil {
		t.Fatal("confirmed bookings must be refunded, not cancelled")
	}
	if !strings.Contains(err.Error(), "cannot be cancelled") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSweepStalePending(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := NewService(repo)

	stale, err := svc.CreatePendingBooking(context.Background(), uuid.New(), validInput(t))
	if err != nil {
		t.Fatal(err)
	}
	stale.CreatedAt = time.Now().Add(-48 * time.Hour)

	fresh, err := svc.CreatePendingBooking(context.Background(), uuid.New(), validInput(t))
	if err != nil {
		t.Fatal(err)
	}

	n, err := svc.SweepStalePending(context.Background(), 24*time.Hour, 100)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("swept %d bookings, want 1", n)
	}
	if stale.Status != StatusCancelled {
		t.Errorf("stale booking status = %s, want CANCELLED", stale.Status)
	}
	if fresh.Status != StatusPendingPayment {
		t.Errorf("fresh booking status = %s, want PENDING_PAYMENT", fresh.Status)
	}
}
