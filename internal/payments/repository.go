package payments

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roamly/internal/bookings"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrEventAlreadyProcessed means the event id already exists in the
	// ledger: a duplicate delivery whose transition has already been applied.
	ErrEventAlreadyProcessed = errors.New("webhook event already processed")
	// ErrStalePaymentState means the payment exists but is not in a state the
	// event can transition (e.g. a capture for an already-captured payment).
	ErrStalePaymentState = errors.New("payment not in a state this event can transition")
)

// Repository interface defines the contract for payment data operations.
// The Mark* methods each run one transaction that inserts the ledger row
// AND applies the payment/booking transition; they commit together or not
// at all.
type Repository interface {
	CreatePayment(ctx context.Context, payment *Payment) error
	GetPaymentByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*Payment, error)

	MarkCaptured(ctx context.Context, eventID string, eventType string, entity *PaymentEntity) (*Payment, error)
	MarkFailed(ctx context.Context, eventID string, eventType string, orderID string) (*Payment, error)
	MarkRefunded(ctx context.Context, eventID string, eventType string, entity *RefundEntity) (*Payment, error)

	ApplyRefund(ctx context.Context, gatewayPaymentID string, refundID string, refundAmount int64) (*Payment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new payment repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) GetPaymentByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("gateway_payment_id = ?", gatewayPaymentID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// MarkCaptured applies a capture event: ledger insert, Payment -> CAPTURED
// with the gateway payment id and method attached, Booking -> CONFIRMED.
// Aborts with ErrStalePaymentState if the payment already left CREATED, so
// the ledger row rolls back with it.
func (r *repository) MarkCaptured(ctx context.Context, eventID string, eventType string, entity *PaymentEntity) (*Payment, error) {
	var payment Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.recordEvent(tx, eventID, eventType); err != nil {
			return err
		}

		if err := lockPaymentByOrderID(tx, entity.OrderID, &payment); err != nil {
			return err
		}

		if !payment.Status.CanCapture() {
			return ErrStalePaymentState
		}

		payment.Status = StatusCaptured
		payment.GatewayPaymentID = entity.ID
		payment.Method = entity.Method
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		return tx.Model(&bookings.Booking{}).
			Where("id = ?", payment.BookingID).
			Updates(map[string]interface{}{
				"status":             bookings.StatusConfirmed,
				"gateway_payment_id": entity.ID,
			}).Error
	})
	if err != nil {
		return nil, translateLedgerError(err)
	}

	return &payment, nil
}

// MarkFailed applies a failure event: ledger insert, Payment -> FAILED,
// Booking -> FAILED.
func (r *repository) MarkFailed(ctx context.Context, eventID string, eventType string, orderID string) (*Payment, error) {
	var payment Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.recordEvent(tx, eventID, eventType); err != nil {
			return err
		}

		if err := lockPaymentByOrderID(tx, orderID, &payment); err != nil {
			return err
		}

		if payment.Status.IsTerminal() {
			return ErrStalePaymentState
		}

		payment.Status = StatusFailed
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		return tx.Model(&bookings.Booking{}).
			Where("id = ?", payment.BookingID).
			Update("status", bookings.StatusFailed).Error
	})
	if err != nil {
		return nil, translateLedgerError(err)
	}

	return &payment, nil
}

// MarkRefunded applies a gateway-initiated refund event. Lookup is by the
// gateway payment id, not the order id.
func (r *repository) MarkRefunded(ctx context.Context, eventID string, eventType string, entity *RefundEntity) (*Payment, error) {
	var payment Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.recordEvent(tx, eventID, eventType); err != nil {
			return err
		}

		if err := lockPaymentByGatewayID(tx, entity.PaymentID, &payment); err != nil {
			return err
		}

		if payment.Status == StatusRefunded {
			return ErrStalePaymentState
		}

		payment.Status = StatusRefunded
		payment.RefundID = entity.ID
		payment.RefundAmount = entity.Amount
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		return tx.Model(&bookings.Booking{}).
			Where("id = ?", payment.BookingID).
			Update("status", bookings.StatusRefunded).Error
	})
	if err != nil {
		return nil, translateLedgerError(err)
	}

	return &payment, nil
}

// ApplyRefund applies an administrator-initiated refund already accepted by
// the gateway. There is no ledger row here; idempotency is the gateway's
// problem on this path, and the status guard keeps a concurrent webhook
// refund from double-applying.
func (r *repository) ApplyRefund(ctx context.Context, gatewayPaymentID string, refundID string, refundAmount int64) (*Payment, error) {
	var payment Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPaymentByGatewayID(tx, gatewayPaymentID, &payment); err != nil {
			return err
		}

		if payment.Status == StatusRefunded {
			// A webhook refund event got here first. Keep its record.
			return nil
		}

		payment.Status = StatusRefunded
		payment.RefundID = refundID
		payment.RefundAmount = refundAmount
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		return tx.Model(&bookings.Booking{}).
			Where("id = ?", payment.BookingID).
			Update("status", bookings.StatusRefunded).Error
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *repository) recordEvent(tx *gorm.DB, eventID, eventType string) error {
	event := &WebhookEvent{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now(),
	}
	return tx.Create(event).Error
}

func lockPaymentByOrderID(tx *gorm.DB, orderID string, payment *Payment) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPaymentNotFound
	}
	return err
}

func lockPaymentByGatewayID(tx *gorm.DB, gatewayPaymentID string, payment *Payment) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gateway_payment_id = ?", gatewayPaymentID).
		First(payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPaymentNotFound
	}
	return err
}

// translateLedgerError maps a unique violation on the event ledger to
// ErrEventAlreadyProcessed. Two concurrent deliveries of the same event race
// on ux_webhook_events_event_id; exactly one insert wins.
func translateLedgerError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEventAlreadyProcessed
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEventAlreadyProcessed
	}
	return err
}
