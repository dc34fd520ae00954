package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roamly/internal/bookings"
	"roamly/internal/gateway"
	"roamly/internal/shared/config"
	"roamly/internal/shared/constants"
	"roamly/internal/tours"
	"roamly/pkg/cache"
	"roamly/pkg/logger"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrTourUnavailable  = errors.New("tour not found or not bookable")
	ErrNotRefundable    = errors.New("payment is not in a refundable state")
)

// ConfirmationNotice carries what the post-confirmation notifier needs to
// render and send the booking confirmation. It is assembled inside the
// capture transaction's result, then dispatched fire-and-forget.
type ConfirmationNotice struct {
	BookingID     string
	BookingRef    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	TourID        string
	OrderID       string
	PaymentID     string
	Amount        int64
	Currency      string
	StartDate     time.Time
	Participants  int
}

// Notifier dispatches post-confirmation notifications. Implementations must
// never block reconciliation: errors are theirs to log and swallow.
type Notifier interface {
	BookingConfirmed(ctx context.Context, notice *ConfirmationNotice)
}

// Service interface defines the contract for payment business logic
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*CreateOrderResponse, error)
	HandleWebhookEvent(ctx context.Context, rawBody []byte, signature string) (*WebhookResult, error)
	Refund(ctx context.Context, req *RefundRequest) (*RefundResponse, error)
}

type service struct {
	repo        Repository
	bookingsSvc bookings.Service
	toursRepo   tours.Repository
	gateway     gateway.Client
	cache       cache.Service
	notifier    Notifier
	config      *config.Config
	logger      *logger.Logger
}

// NewService creates a new payment service instance
func NewService(
	repo Repository,
	bookingsSvc bookings.Service,
	toursRepo tours.Repository,
	gw gateway.Client,
	cacheService cache.Service,
	notifier Notifier,
	cfg *config.Config,
	log *logger.Logger,
) Service {
	return &service{
		repo:        repo,
		bookingsSvc: bookingsSvc,
		toursRepo:   toursRepo,
		gateway:     gw,
		cache:       cacheService,
		notifier:    notifier,
		config:      cfg,
		logger:      log,
	}
}

// CreateOrder persists a pending booking, creates a gateway order sized to
// its total, and records the payment in CREATED keyed by the order id.
// If the gateway call fails after the booking was persisted, the booking
// stays PENDING_PAYMENT and the background sweep eventually cancels it.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	data := req.BookingData

	tourID, err := uuid.Parse(data.TourID)
	if err != nil {
		return nil, ErrTourUnavailable
	}

	tour, err := s.toursRepo.GetTourByID(ctx, tourID)
	if err != nil {
		if errors.Is(err, tours.ErrTourNotFound) {
			return nil, ErrTourUnavailable
		}
		return nil, fmt.Errorf("failed to look up tour: %w", err)
	}
	if !tour.Active {
		return nil, ErrTourUnavailable
	}

	amount := MajorToMinor(data.TotalAmount)
	currency := s.config.Gateway.Currency

	booking, err := s.bookingsSvc.CreatePendingBooking(ctx, userID, bookings.CreateBookingInput{
		TourID:        tourID,
		CustomerName:  data.CustomerName,
		CustomerEmail: data.CustomerEmail,
		CustomerPhone: data.CustomerPhone,
		StartDate:     data.StartDate,
		Participants:  data.Participants,
		TotalAmount:   amount,
		Currency:      currency,
	})
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, amount, currency, booking.BookingRef)
	if err != nil {
		s.logger.GatewayOrderFailed(booking.ID.String(), err)
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	payment := &Payment{
		BookingID: booking.ID,
		OrderID:   order.ID,
		Amount:    amount,
		Currency:  currency,
		Status:    StatusCreated,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	if err := s.bookingsSvc.AttachOrderID(ctx, booking.ID, order.ID); err != nil {
		return nil, fmt.Errorf("failed to attach order to booking: %w", err)
	}

	s.logger.OrderCreated(order.ID, booking.ID.String(), amount, currency)

	return &CreateOrderResponse{
		OrderID:          order.ID,
		BookingID:        booking.ID.String(),
		Amount:           amount,
		Currency:         currency,
		GatewayPublicKey: s.config.Gateway.KeyID,
	}, nil
}

// HandleWebhookEvent authenticates and reconciles one gateway delivery.
// Duplicate deliveries collapse to already_processed; events referencing
// records this system does not own are acknowledged as ignored. Any error
// past authentication propagates so the transport layer answers non-2xx and
// the gateway retries.
func (s *service) HandleWebhookEvent(ctx context.Context, rawBody []byte, signature string) (*WebhookResult, error) {
	if !VerifySignature(rawBody, signature, s.config.Gateway.WebhookSecret) {
		s.logger.WebhookRejected(signature)
		return nil, ErrInvalidSignature
	}

	env, err := ParseEnvelope(rawBody)
	if err != nil {
		return nil, err
	}

	eventID := env.EventID(rawBody)
	s.logger.WebhookReceived(eventID, env.Event)

	// Redis fast path. The ledger's unique index remains the authoritative
	// dedup; this only short-circuits obvious retries.
	dedupKey := constants.WebhookEventKey(eventID)
	if s.cache != nil && s.cache.Exists(ctx, dedupKey) {
		return &WebhookResult{Status: AckAlreadyProcessed, EventID: eventID, EventType: env.Event}, nil
	}

	var result *WebhookResult
	switch env.Event {
	case EventPaymentCaptured, EventOrderPaid:
		result, err = s.handleCapture(ctx, env, eventID)
	case EventPaymentFailed:
		result, err = s.handleFailure(ctx, env, eventID)
	case EventRefundProcessed:
		result, err = s.handleRefundEvent(ctx, env, eventID)
	default:
		// Forward-compatible no-op
		result = &WebhookResult{Status: AckIgnored, EventID: eventID, EventType: env.Event}
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil && result.Status != AckIgnored {
		if cacheErr := s.cache.Set(ctx, dedupKey, result.Status, constants.TTL_WEBHOOK_DEDUP); cacheErr != nil {
			s.logger.Warn("Failed to cache webhook dedup key", "event_id", eventID, "error", cacheErr.Error())
		}
	}

	return result, nil
}

func (s *service) handleCapture(ctx context.Context, env *Envelope, eventID string) (*WebhookResult, error) {
	entity, err := env.PaymentEntity()
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.MarkCaptured(ctx, eventID, env.Event, entity)
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		// The order may belong to another system or stale test data
		s.logger.Warn("Capture event for unknown order", "event_id", eventID, "order_id", entity.OrderID)
		return &WebhookResult{Status: AckIgnored, EventID: eventID, EventType: env.Event}, nil
	case errors.Is(err, ErrEventAlreadyProcessed), errors.Is(err, ErrStalePaymentState):
		return &WebhookResult{Status: AckAlreadyProcessed, EventID: eventID, EventType: env.Event}, nil
	case err != nil:
		return nil, err
	}

	s.logger.PaymentCaptured(entity.OrderID, entity.ID, payment.Amount)
	s.dispatchConfirmation(payment, entity)

	return &WebhookResult{Status: AckSuccess, EventID: eventID, EventType: env.Event}, nil
}

func (s *service) handleFailure(ctx context.Context, env *Envelope, eventID string) (*WebhookResult, error) {
	entity, err := env.PaymentEntity()
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.MarkFailed(ctx, eventID, env.Event, entity.OrderID)
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		s.logger.Warn("Failure event for unknown order", "event_id", eventID, "order_id", entity.OrderID)
		return &WebhookResult{Status: AckIgnored, EventID: eventID, EventType: env.Event}, nil
	case errors.Is(err, ErrEventAlreadyProcessed), errors.Is(err, ErrStalePaymentState):
		return &WebhookResult{Status: AckAlreadyProcessed, EventID: eventID, EventType: env.Event}, nil
	case err != nil:
		return nil, err
	}

	s.logger.PaymentFailed(entity.OrderID, payment.BookingID.String())

	return &WebhookResult{Status: AckSuccess, EventID: eventID, EventType: env.Event}, nil
}

func (s *service) handleRefundEvent(ctx context.Context, env *Envelope, eventID string) (*WebhookResult, error) {
	entity, err := env.RefundEntity()
	if err != nil {
		return nil, err
	}

	_, err = s.repo.MarkRefunded(ctx, eventID, env.Event, entity)
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		s.logger.Warn("Refund event for unknown payment", "event_id", eventID, "gateway_payment_id", entity.PaymentID)
		return &WebhookResult{Status: AckIgnored, EventID: eventID, EventType: env.Event}, nil
	case errors.Is(err, ErrEventAlreadyProcessed), errors.Is(err, ErrStalePaymentState):
		return &WebhookResult{Status: AckAlreadyProcessed, EventID: eventID, EventType: env.Event}, nil
	case err != nil:
		return nil, err
	}

	s.logger.RefundIssued(entity.PaymentID, entity.ID, entity.Amount)

	return &WebhookResult{Status: AckSuccess, EventID: eventID, EventType: env.Event}, nil
}

// Refund reverses a captured payment at an administrator's request. The
// gateway-side refund is issued first; if the local record then turns out to
// be missing, the response carries a warning for manual reconciliation
// rather than pretending the refund did not happen.
func (s *service) Refund(ctx context.Context, req *RefundRequest) (*RefundResponse, error) {
	// Fail before touching the gateway when the local record already says
	// the payment cannot be refunded. A missing local record is tolerated
	// here: the refund still proceeds and surfaces the reconciliation
	// warning below.
	local, err := s.repo.GetPaymentByGatewayPaymentID(ctx, req.PaymentID)
	if err == nil && !local.Status.CanRefund() {
		return nil, fmt.Errorf("%w: status is %s", ErrNotRefundable, local.Status)
	}
	if err != nil && !errors.Is(err, ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to look up payment: %w", err)
	}

	gwPayment, err := s.gateway.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}

	amount := gwPayment.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}

	refund, err := s.gateway.CreateRefund(ctx, req.PaymentID, amount)
	if err != nil {
		return nil, err
	}

	resp := &RefundResponse{
		RefundID:     refund.ID,
		RefundAmount: MinorToMajor(refund.Amount),
		Status:       refund.Status,
	}

	_, err = s.repo.ApplyRefund(ctx, req.PaymentID, refund.ID, refund.Amount)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			s.logger.Warn("Gateway refund succeeded but no local payment record matches",
				"gateway_payment_id", req.PaymentID,
				"refund_id", refund.ID,
			)
			resp.Warning = "refund processed at gateway but no local payment record was found; manual reconciliation required"
			return resp, nil
		}
		return nil, fmt.Errorf("failed to record refund locally: %w", err)
	}

	s.logger.RefundIssued(req.PaymentID, refund.ID, refund.Amount)

	return resp, nil
}

// dispatchConfirmation hands the confirmation to the notifier on a detached
// context. Reconciliation has already committed; nothing here may fail it.
func (s *service) dispatchConfirmation(payment *Payment, entity *PaymentEntity) {
	if s.notifier == nil {
		return
	}

	booking, err := s.bookingsSvc.GetBooking(context.Background(), payment.BookingID)
	if err != nil {
		s.logger.Warn("Confirmed booking not readable for notification", "booking_id", payment.BookingID.String(), "error", err.Error())
		return
	}

	notice := &ConfirmationNotice{
		BookingID:     booking.ID.String(),
		BookingRef:    booking.BookingRef,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		CustomerPhone: booking.CustomerPhone,
		TourID:        booking.TourID.String(),
		OrderID:       payment.OrderID,
		PaymentID:     entity.ID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		StartDate:     booking.StartDate,
		Participants:  booking.Participants,
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Notifier panicked", "booking_id", notice.BookingID, "panic", fmt.Sprint(r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.notifier.BookingConfirmed(ctx, notice)
	}()
}
