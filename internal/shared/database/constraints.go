package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	// The webhook event ledger is the idempotency backstop: two concurrent
	// deliveries of the same event race on this unique index and exactly one
	// insert wins inside its transaction.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_webhook_events_event_id
		ON webhook_events (event_id);
	`).Error
	if err != nil {
		return err
	}

	// One payment per gateway order
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_payments_order_id
		ON payments (order_id);
	`).Error
	if err != nil {
		return err
	}

	// Refund lookups come in keyed by the gateway payment id
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_payments_gateway_payment_id
		ON payments (gateway_payment_id);
	`).Error
	if err != nil {
		return err
	}

	// The stale-pending sweep scans by status and age
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_status_created_at
		ON bookings (status, created_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
