package database

import (
	"roamly/internal/bookings"
	"roamly/internal/payments"
	"roamly/internal/tours"
	"roamly/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&tours.Tour{},
		&bookings.Booking{},
		&payments.Payment{},
		&payments.WebhookEvent{},
	)
}
