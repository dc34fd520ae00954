package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// CreateBookingInput carries the validated fields needed to open a booking
// in PENDING_PAYMENT. Amount is in minor currency units, already computed
// by the caller.
type CreateBookingInput struct {
	TourID        uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StartDate     time.Time
	Participants  int
	TotalAmount   int64
	Currency      string
}

// Service interface defines the contract for booking business logic
type Service interface {
	CreatePendingBooking(ctx context.Context, userID uuid.UUID, input CreateBookingInput) (*Booking, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*BookingListResponse, error)
	GetAllBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID, userID uuid.UUID) error
	AttachOrderID(ctx context.Context, bookingID uuid.UUID, orderID string) error
	SweepStalePending(ctx context.Context, pendingTTL time.Duration, batchSize int) (int64, error)
}

// service implements the Service interface
type service struct {
	repo Repository
}

// NewService creates a new booking service instance
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreatePendingBooking persists a new booking awaiting payment
func (s *service) CreatePendingBooking(ctx context.Context, userID uuid.UUID, input CreateBookingInput) (*Booking, error) {
	if input.TotalAmount <= 0 {
		return nil, fmt.Errorf("booking total must be positive")
	}
	if input.Participants <= 0 {
		return nil, fmt.Errorf("participant count must be positive")
	}

	bookingRef, err := s.generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &Booking{
		UserID:        userID,
		TourID:        input.TourID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		StartDate:     input.StartDate,
		Participants:  input.Participants,
		TotalAmount:   input.TotalAmount,
		Currency:      input.Currency,
		Status:        StatusPendingPayment,
		BookingRef:    bookingRef,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return booking, nil
}

// GetBooking retrieves a booking by ID
func (s *service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return s.repo.GetBookingByID(ctx, bookingID)
}

// GetUserBookings retrieves bookings for a specific user
func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*BookingListResponse, error) {
	result, total, err := s.repo.GetUserBookings(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	return s.toListResponse(result, total, query), nil
}

// GetAllBookings retrieves bookings across all users (admin)
func (s *service) GetAllBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error) {
	result, total, err := s.repo.GetAllBookings(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return s.toListResponse(result, total, query), nil
}

// CancelBooking cancels a booking that has not collected funds yet
func (s *service) CancelBooking(ctx context.Context, bookingID uuid.UUID, userID uuid.UUID) error {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}

	// Verify ownership
	if booking.UserID != userID {
		return fmt.Errorf("unauthorized: booking does not belong to user")
	}

	if !booking.Status.CanBeCancelled() {
		return fmt.Errorf("booking in status %s cannot be cancelled", booking.Status)
	}

	if err := s.repo.CancelPendingBooking(ctx, bookingID); err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	return nil
}

// AttachOrderID links a gateway order to the booking after order creation
func (s *service) AttachOrderID(ctx context.Context, bookingID uuid.UUID, orderID string) error {
	return s.repo.AttachOrderID(ctx, bookingID, orderID)
}

// SweepStalePending cancels abandoned PENDING_PAYMENT bookings older than the TTL
func (s *service) SweepStalePending(ctx context.Context, pendingTTL time.Duration, batchSize int) (int64, error) {
	cutoff := time.Now().Add(-pendingTTL)
	return s.repo.ExpireStalePending(ctx, cutoff, batchSize)
}

func (s *service) toListResponse(result []Booking, total int64, query BookingListQuery) *BookingListResponse {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}
	return &BookingListResponse{
		Bookings:   result,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: CalculateTotalPages(total, limit),
	}
}

// generateBookingReference generates a unique booking reference
func (s *service) generateBookingReference() (string, error) {
	timestamp := time.Now().Format("20060102")

	// Generate 6 random uppercase letters
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)

	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("TRP-%s-%s", timestamp, string(randomPart)), nil
}
