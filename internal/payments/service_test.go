package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"roamly/internal/bookings"
	"roamly/internal/gateway"
	"roamly/internal/shared/config"
	"roamly/internal/tours"
	"roamly/pkg/logger"
)

const testWebhookSecret = "whsec_test"

// fakePaymentRepo is an in-memory Repository with the same dedup and
// state-guard semantics as the real one.
type fakePaymentRepo struct {
	byOrderID   map[string]*Payment
	byGatewayID map[string]*Payment
	processed   map[string]bool
	created     []*Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		byOrderID:   make(map[string]*Payment),
		byGatewayID: make(map[string]*Payment),
		processed:   make(map[string]bool),
	}
}

func (f *fakePaymentRepo) addPayment(t *testing.T, p *Payment) *Payment {
	t.Helper()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.byOrderID[p.OrderID] = p
	if p.GatewayPaymentID != "" {
		f.byGatewayID[p.GatewayPaymentID] = p
	}
	return p
}

func (f *fakePaymentRepo) CreatePayment(ctx context.Context, payment *Payment) error {
	payment.ID = uuid.New()
	f.byOrderID[payment.OrderID] = payment
	f.created = append(f.created, payment)
	return nil
}

func (f *fakePaymentRepo) GetPaymentByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*Payment, error) {
	p, ok := f.byGatewayID[gatewayPaymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePaymentRepo) MarkCaptured(ctx context.Context, eventID, eventType string, entity *PaymentEntity) (*Payment, error) {
	if f.processed[eventID] {
		return nil, ErrEventAlreadyProcessed
	}
	p, ok := f.byOrderID[entity.OrderID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	if !p.Status.CanCapture() {
		return nil, ErrStalePaymentState
	}
	f.processed[eventID] = true
	p.Status = StatusCaptured
	p.GatewayPaymentID = entity.ID
	p.Method = entity.Method
	f.byGatewayID[entity.ID] = p
	return p, nil
}

func (f *fakePaymentRepo) MarkFailed(ctx context.Context, eventID, eventType, orderID string) (*Payment, error) {
	if f.processed[eventID] {
		return nil, ErrEventAlreadyProcessed
	}
	p, ok := f.byOrderID[orderID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	if p.Status.IsTerminal() {
		return nil, ErrStalePaymentState
	}
	f.processed[eventID] = true
	p.Status = StatusFailed
	return p, nil
}

func (f *fakePaymentRepo) MarkRefunded(ctx context.Context, eventID, eventType string, entity *RefundEntity) (*Payment, error) {
	if f.processed[eventID] {
		return nil, ErrEventAlreadyProcessed
	}
	p, ok := f.byGatewayID[entity.PaymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	if p.Status == StatusRefunded {
		return nil, ErrStalePaymentState
	}
	f.processed[eventID] = true
	p.Status = StatusRefunded
	p.RefundID = entity.ID
	p.RefundAmount = entity.Amount
	return p, nil
}

func (f *fakePaymentRepo) ApplyRefund(ctx context.Context, gatewayPaymentID, refundID string, refundAmount int64) (*Payment, error) {
	p, ok := f.byGatewayID[gatewayPaymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	p.Status = StatusRefunded
	p.RefundID = refundID
	p.RefundAmount = refundAmount
	return p, nil
}

// fakeBookingService stores bookings in memory
type fakeBookingService struct {
	bookings   map[uuid.UUID]*bookings.Booking
	createErr  error
	lastUserID uuid.UUID
}

func newFakeBookingService() *fakeBookingService {
	return &fakeBookingService{bookings: make(map[uuid.UUID]*bookings.Booking)}
}

func (f *fakeBookingService) addBooking(t *testing.T, b *bookings.Booking) *bookings.Booking {
	t.Helper()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	f.bookings[b.ID] = b
	return b
}

func (f *fakeBookingService) CreatePendingBooking(ctx context.Context, userID uuid.UUID, input bookings.CreateBookingInput) (*bookings.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastUserID = userID
	b := &bookings.Booking{
		ID:            uuid.New(),
		UserID:        userID,
		TourID:        input.TourID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		StartDate:     input.StartDate,
		Participants:  input.Participants,
		TotalAmount:   input.TotalAmount,
		Currency:      input.Currency,
		Status:        bookings.StatusPendingPayment,
		BookingRef:    "TRP-20260901-ABCDEF",
	}
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeBookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*bookings.Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, fmt.Errorf("booking not found")
	}
	return b, nil
}

func (f *fakeBookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, query bookings.BookingListQuery) (*bookings.BookingListResponse, error) {
	return &bookings.BookingListResponse{}, nil
}

func (f *fakeBookingService) GetAllBookings(ctx context.Context, query bookings.BookingListQuery) (*bookings.BookingListResponse, error) {
	return &bookings.BookingListResponse{}, nil
}

func (f *fakeBookingService) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) error {
	return nil
}

func (f *fakeBookingService) AttachOrderID(ctx context.Context, bookingID uuid.UUID, orderID string) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking not found")
	}
	b.OrderID = orderID
	return nil
}

func (f *fakeBookingService) SweepStalePending(ctx context.Context, pendingTTL time.Duration, batchSize int) (int64, error) {
	return 0, nil
}

// fakeTourRepo serves a single active tour
type fakeTourRepo struct {
	tour *tours.Tour
}

func (f *fakeTourRepo) GetTourByID(ctx context.Context, id uuid.UUID) (*tours.Tour, error) {
	if f.tour == nil || f.tour.ID != id {
		return nil, tours.ErrTourNotFound
	}
	return f.tour, nil
}

func (f *fakeTourRepo) ListActiveTours(ctx context.Context, limit, offset int) ([]tours.Tour, error) {
	if f.tour == nil {
		return nil, nil
	}
	return []tours.Tour{*f.tour}, nil
}

// fakeGatewayClient scripts gateway responses
type fakeGatewayClient struct {
	order        *gateway.Order
	orderErr     error
	payment      *gateway.Payment
	paymentErr   error
	refund       *gateway.Refund
	refundErr    error
	refundAmount int64
}

func (f *fakeGatewayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*gateway.Order, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.order, nil
}

func (f *fakeGatewayClient) FetchPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	return f.payment, nil
}

func (f *fakeGatewayClient) CreateRefund(ctx context.Context, paymentID string, amount int64) (*gateway.Refund, error) {
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	f.refundAmount = amount
	r := *f.refund
	r.Amount = amount
	return &r, nil
}

// fakeNotifier records dispatches on a channel
type fakeNotifier struct {
	notices chan *ConfirmationNotice
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notices: make(chan *ConfirmationNotice, 4)}
}

func (f *fakeNotifier) BookingConfirmed(ctx context.Context, notice *ConfirmationNotice) {
	f.notices <- notice
}

type serviceFixture struct {
	service  Service
	repo     *fakePaymentRepo
	booking  *fakeBookingService
	tourRepo *fakeTourRepo
	gateway  *fakeGatewayClient
	notifier *fakeNotifier
	config   *config.Config
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	tour := &tours.Tour{
		ID:           uuid.New(),
		Title:        "Spiti Valley Expedition",
		Destination:  "Spiti Valley",
		PricePerHead: 2499900,
		Currency:     "INR",
		Active:       true,
	}

	cfg := &config.Config{
		Gateway: config.GatewayConfig{
			KeyID:         "key_test_id",
			KeySecret:     "key_test_secret",
			WebhookSecret: testWebhookSecret,
			Currency:      "INR",
		},
	}

	f := &serviceFixture{
		repo:     newFakePaymentRepo(),
		booking:  newFakeBookingService(),
		tourRepo: &fakeTourRepo{tour: tour},
		gateway:  &fakeGatewayClient{},
		notifier: newFakeNotifier(),
		config:   cfg,
	}
	f.service = NewService(f.repo, f.booking, f.tourRepo, f.gateway, nil, f.notifier, cfg, logger.New())
	return f
}

// seedCreatedPayment installs a booking plus a CREATED payment for order_abc
func (f *serviceFixture) seedCreatedPayment(t *testing.T) *Payment {
	t.Helper()
	booking := f.booking.addBooking(t, &bookings.Booking{
		UserID:        uuid.New(),
		TourID:        f.tourRepo.tour.ID,
		CustomerName:  "Asha Iyer",
		CustomerEmail: "asha@example.com",
		Status:        bookings.StatusPendingPayment,
		BookingRef:    "TRP-20260901-SEEDED",
		TotalAmount:   25000,
		Currency:      "INR",
		OrderID:       "order_abc",
	})
	return f.repo.addPayment(t, &Payment{
		BookingID: booking.ID,
		OrderID:   "order_abc",
		Amount:    25000,
		Currency:  "INR",
		Status:    StatusCreated,
	})
}

func signedEvent(t *testing.T, body string) ([]byte, string) {
	t.Helper()
	raw := []byte(body)
	return raw, ComputeSignature(raw, testWebhookSecret)
}

func TestCreateOrderHappyPath(t *testing.T) {
	f := newServiceFixture(t)
	f.gateway.order = &gateway.Order{ID: "order_abc", Amount: 25000, Currency: "INR", Status: "created"}

	userID := uuid.New()
	resp, err := f.service.CreateOrder(context.Background(), userID, &CreateOrderRequest{
		BookingData: BookingData{
			CustomerName:  "Asha Iyer",
			CustomerEmail: "asha@example.com",
			CustomerPhone: "+919876543210",
			TourID:        f.tourRepo.tour.ID.String(),
			StartDate:     time.Now().AddDate(0, 1, 0),
			Participants:  2,
			TotalAmount:   250.00,
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if resp.OrderID != "order_abc" {
		t.Errorf("OrderID = %q, want order_abc", resp.OrderID)
	}
	if resp.Amount != 25000 {
		t.Errorf("Amount = %d minor units, want 25000", resp.Amount)
	}
	if resp.Currency != "INR" {
		t.Errorf("Currency = %q, want INR", resp.Currency)
	}
	if resp.GatewayPublicKey != "key_test_id" {
		t.Errorf("GatewayPublicKey = %q, want the configured key id", resp.GatewayPublicKey)
	}

	if len(f.repo.created) != 1 {
		t.Fatalf("expected 1 payment persisted, got %d", len(f.repo.created))
	}
	p := f.repo.created[0]
	if p.Status != StatusCreated || p.OrderID != "order_abc" || p.Amount != 25000 {
		t.Errorf("unexpected persisted payment: %+v", p)
	}

	bookingID, err := uuid.Parse(resp.BookingID)
	if err != nil {
		t.Fatalf("BookingID not a uuid: %v", err)
	}
	b, err := f.booking.GetBooking(context.Background(), bookingID)
	if err != nil {
		t.Fatal(err)
	}
	if b.OrderID != "order_abc" {
		t.Errorf("order id not attached to booking, got %q", b.OrderID)
	}
	if b.Status != bookings.StatusPendingPayment {
		t.Errorf("booking status = %s, want PENDING_PAYMENT", b.Status)
	}
}

func TestCreateOrderGatewayFailureLeavesBookingPending(t *testing.T) {
	f := newServiceFixture(t)
	f.gateway.orderErr = gateway.ErrGatewayUnavailable

	_, err := f.service.CreateOrder(context.Background(), uuid.New(), &CreateOrderRequest{
		BookingData: BookingData{
			CustomerName:  "Asha Iyer",
			CustomerEmail: "asha@example.com",
			CustomerPhone: "+919876543210",
			TourID:        f.tourRepo.tour.ID.String(),
			StartDate:     time.Now().AddDate(0, 1, 0),
			Participants:  1,
			TotalAmount:   100.00,
		},
	})
	if !errors.Is(err, gateway.ErrGatewayUnavailable) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	if len(f.repo.created) != 0 {
		t.Error("no payment should be persisted when the gateway call fails")
	}
	// The booking survives in PENDING_PAYMENT for the sweep to reap
	if len(f.booking.bookings) != 1 {
		t.Fatalf("expected the pending booking to remain, have %d", len(f.booking.bookings))
	}
	for _, b := range f.booking.bookings {
		if b.Status != bookings.StatusPendingPayment {
			t.Errorf("booking status = %s, want PENDING_PAYMENT", b.Status)
		}
	}
}

func TestCreateOrderUnknownTour(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.CreateOrder(context.Background(), uuid.New(), &CreateOrderRequest{
		BookingData: BookingData{
			CustomerName:  "Asha Iyer",
			CustomerEmail: "asha@example.com",
			CustomerPhone: "+919876543210",
			TourID:        uuid.NewString(),
			StartDate:     time.Now().AddDate(0, 1, 0),
			Participants:  1,
			TotalAmount:   100.00,
		},
	})
	if !errors.Is(err, ErrTourUnavailable) {
		t.Fatalf("expected ErrTourUnavailable, got %v", err)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	f := newServiceFixture(t)
	body := []byte(`{"id":"evt_1","event":"payment.captured","payload":{}}`)

	_, err := f.service.HandleWebhookEvent(context.Background(), body, "deadbeef")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	// Signed by the wrong secret
	wrongSig := ComputeSignature(body, "whsec_other")
	if _, err := f.service.HandleWebhookEvent(context.Background(), body, wrongSig); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for wrong secret, got %v", err)
	}
}

func TestHandleWebhookCaptureHappyPath(t *testing.T) {
	f := newServiceFixture(t)
	payment := f.seedCreatedPayment(t)

	body, sig := signedEvent(t, `{"id":"evt_cap_1","event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_xyz","order_id":"order_abc","amount":25000,"currency":"INR","method":"upi"}}}}`)

	result, err := f.service.HandleWebhookEvent(context.Background(), body, sig)
	if err != nil {
		t.Fatalf("HandleWebhookEvent failed: %v", err)
	}
	if result.Status != AckSuccess {
		t.Errorf("ack = %q, want success", result.Status)
	}

	if payment.Status != StatusCaptured {
		t.Errorf("payment status = %s, want CAPTURED", payment.Status)
	}
	if payment.GatewayPaymentID != "pay_xyz" {
		t.Errorf("gateway payment id = %q, want pay_xyz", payment.GatewayPaymentID)
	}
	if payment.Method != "upi" {
		t.Errorf("method = %q, want upi", payment.Method)
	}

	select {
	case notice := <-f.notifier.notices:
		if notice.PaymentID != "pay_xyz" || notice.OrderID != "order_abc" {
			t.Errorf("unexpected confirmation notice: %+v", notice)
		}
		if notice.Amount != 25000 {
			t.Errorf("notice amount = %d, want 25000", notice.Amount)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation notice never dispatched")
	}
}

func TestHandleWebhookDuplicateDelivery(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCreatedPayment(t)

	body, sig := signedEvent(t, `{"id":"evt_dup","event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_xyz","order_id":"order_abc","amount":25000}}}}`)

	first, err := f.service.HandleWebhookEvent(context.Background(), body, sig)
	if err != nil {
		t.Fatal(err)
	}
	if first.Status != AckSuccess {
		t.Fatalf("first delivery ack = %q, want success", first.Status)
	}

	second, err := f.service.HandleWebhookEvent(context.Background(), body, sig)
	if err != nil {
		t.Fatal(err)
	}
	if second.Status != AckAlreadyProcessed {
		t.Errorf("second delivery ack = %q, want already_processed", second.Status)
	}
}

func TestHandleWebhookUnknownOrderIgnored(t *testing.T) {
	f := newServiceFixture(t)

	body, sig := signedEvent(t, `{"id":"evt_unknown","event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_zzz","order_id":"order_never_seen","amount":100}}}}`)

	result, err := f.service.HandleWebhookEvent(context.Background(), body, sig)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != AckIgnored {
		t.Errorf("ack = %q, want ignored", result.Status)
	}
	if len(f.repo.created) != 0 {
		t.Error("no spurious payment record may be created for an unknown order")
	}
}

func TestHandleWebhookCaptureOnNonCreatedPayment(t *testing.T) {
	f := newServiceFixture(t)
	payment := f.seedCreatedPayment(t)
	payment.Status = StatusCaptured
	payment.GatewayPaymentID = "pay_xyz"
	f.repo.byGatewayID["pay_xyz"] = payment

	body, sig := signedEvent(t, `{"id":"evt_late_cap","event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_other","order_id":"order_abc","amount":25000}}}}`)

	result, err := f.service.HandleWebhookEvent(context.Background(), body, sig)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != AckAlreadyProcessed {
		t.Errorf("ack = %q, want already_processed", result.Status)
	}
	if payment.GatewayPaymentID != "pay_xyz" {
		t.Error("a stale capture must not overwrite the recorded payment id")
	}
}

func TestHandleWebhookPaymentFailed(t *testing.T) {
	f := newServiceFixture(t)
	payment := f.seedCreatedPayment(t)

	body, sig := signedEvent(t, `{"id":"evt_fail","event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_xyz","order_id":"order_abc","amount":25000}}}}`)

	result, err := f.service.HandleWebhookEvent(context.Background(), body, sig)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != AckSuccess {
		t.Errorf("ack = %q, want success", result.Status)
	}
	if payment.Status != StatusFailed {
		t.Errorf("payment status = %s, want FAILED", payment.Status)
	}

	select {
	case <-f.notifier.notices:
		t.Fatal("failure events must not trigger confirmation notices")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandleWebhookRefundProcessed(t *testing.T) {
	f := newServiceFixture(t)
	payment := f.seedCreatedPayment(t)
	payment.Status = StatusCaptured
	payment.GatewayPaymentID = "pay_xyz"
	f.repo.byGatewayID["pay_xyz"] = payment

	body, sig := signedEvent(t, `{"id":"evt_refund","event":"refund.processed","payload":{"refund":{"entity":{"id":"rfnd_1","payment_id":"pay_xyz","amount":25000,"status":"processed"}}}}`)

	result, err := f.service.HandleWebhookEvent(context.Background(), body, sig)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != AckSuccess {
		t.Errorf("ack = %q, want success", result.Status)
	}
	if payment.Status != StatusRefunded || payment.RefundID != "rfnd_1" || payment.RefundAmount != 25000 {
		t.Errorf("unexpected payment after refund: %+v", payment)
	}
}

func TestHandleWebhookUnknownEventTypeIgnored(t *testing.T) {
	f := newServiceFixture(t)

	body, sig := signedEvent(t, `{"id":"evt_future","event":"subscription.activated","payload":{"something":{}}}`)

	result, err := f.service.HandleWebhookEvent(context.Background(), body, sig)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != AckIgnored {
		t.Errorf("ack = %q, want ignored", result.Status)
	}
}

func TestRefundFullAmountByDefault(t *testing.T) {
	f := newServiceFixture(t)
	payment := f.seedCreatedPayment(t)
	payment.Status = StatusCaptured
	payment.GatewayPaymentID = "pay_xyz"
	f.repo.byGatewayID["pay_xyz"] = payment

	f.gateway.payment = &gateway.Payment{ID: "pay_xyz", OrderID: "order_abc", Amount: 25000, Currency: "INR", Status: "captured"}
	f.gateway.refund = &gateway.Refund{ID: "rfnd_9", PaymentID: "pay_xyz", Currency: "INR", Status: "processed"}

	resp, err := f.service.Refund(context.Background(), &RefundRequest{PaymentID: "pay_xyz"})
	if err != nil {
		t.Fatalf("Refund failed: %v", err)
	}

	if f.gateway.refundAmount != 25000 {
		t.Errorf("gateway refund amount = %d, want the full captured 25000", f.gateway.refundAmount)
	}
	if resp.RefundAmount != 250.00 {
		t.Errorf("RefundAmount = %v major units, want 250.00", resp.RefundAmount)
	}
	if resp.RefundID != "rfnd_9" {
		t.Errorf("RefundID = %q, want rfnd_9", resp.RefundID)
	}
	if resp.Warning != "" {
		t.Errorf("unexpected warning: %q", resp.Warning)
	}
	if payment.Status != StatusRefunded {
		t.Errorf("payment status = %s, want REFUNDED", payment.Status)
	}
}

func TestRefundPartialAmount(t *testing.T) {
	f := newServiceFixture(t)
	payment := f.seedCreatedPayment(t)
	payment.Status = StatusCaptured
	payment.GatewayPaymentID = "pay_xyz"
	f.repo.byGatewayID["pay_xyz"] = payment

	f.gateway.payment = &gateway.Payment{ID: "pay_xyz", Amount: 25000, Status: "captured"}
	f.gateway.refund = &gateway.Refund{ID: "rfnd_part", PaymentID: "pay_xyz", Status: "processed"}

	partial := int64(10000)
	resp, err := f.service.Refund(context.Background(), &RefundRequest{PaymentID: "pay_xyz", Amount: &partial})
	if err != nil {
		t.Fatal(err)
	}

	if f.gateway.refundAmount != 10000 {
		t.Errorf("gateway refund amount = %d, want 10000", f.gateway.refundAmount)
	}
	if resp.RefundAmount != 100.00 {
		t.Errorf("RefundAmount = %v, want 100.00", resp.RefundAmount)
	}
}

func TestRefundRejectedWhenNotCaptured(t *testing.T) {
	f := newServiceFixture(t)
	payment := f.seedCreatedPayment(t)
	payment.GatewayPaymentID = "pay_early"
	f.repo.byGatewayID["pay_early"] = payment

	f.gateway.payment = &gateway.Payment{ID: "pay_early", Amount: 25000, Status: "created"}
	f.gateway.refund = &gateway.Refund{ID: "rfnd_never", PaymentID: "pay_early"}

	_, err := f.service.Refund(context.Background(), &RefundRequest{PaymentID: "pay_early"})
	if !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("err = %v, want ErrNotRefundable", err)
	}
	if f.gateway.refundAmount != 0 {
		t.Error("gateway refund must not be issued for a non-refundable payment")
	}
}

func TestRefundWithoutLocalRecordWarns(t *testing.T) {
	f := newServiceFixture(t)
	f.gateway.payment = &gateway.Payment{ID: "pay_foreign", Amount: 5000, Status: "captured"}
	f.gateway.refund = &gateway.Refund{ID: "rfnd_orphan", PaymentID: "pay_foreign", Status: "processed"}

	resp, err := f.service.Refund(context.Background(), &RefundRequest{PaymentID: "pay_foreign"})
	if err != nil {
		t.Fatalf("refund must not fail when the local record is missing: %v", err)
	}
	if resp.Warning == "" {
		t.Error("expected a manual-reconciliation warning")
	}
	if resp.RefundID != "rfnd_orphan" {
		t.Errorf("RefundID = %q, want rfnd_orphan", resp.RefundID)
	}
}

func TestRefundGatewayRejection(t *testing.T) {
	f := newServiceFixture(t)
	f.gateway.payment = &gateway.Payment{ID: "pay_xyz", Amount: 25000}
	f.gateway.refundErr = &gateway.Error{StatusCode: 400, Code: "BAD_REQUEST_ERROR", Description: "payment already fully refunded"}

	_, err := f.service.Refund(context.Background(), &RefundRequest{PaymentID: "pay_xyz"})
	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected gateway.Error, got %v", err)
	}
	if gwErr.Code != "BAD_REQUEST_ERROR" {
		t.Errorf("Code = %q", gwErr.Code)
	}
}
