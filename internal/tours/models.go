package tours

import (
	"time"

	"github.com/google/uuid"
)

// Tour is the bookable item. Catalog management lives outside this service;
// records are seeded or synced externally and only read here.
type Tour struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Destination  string    `gorm:"not null" json:"destination"`
	DurationDays int       `gorm:"not null" json:"duration_days"`
	// Price per participant in minor currency units (paise)
	PricePerHead int64     `gorm:"not null" json:"price_per_head"`
	Currency     string    `gorm:"type:varchar(3);default:'INR'" json:"currency"`
	MeetingPoint string    `json:"meeting_point"`
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Tour) TableName() string {
	return "tours"
}
