package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks a confirmation job through the pipeline
type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusSending JobStatus = "sending"
	JobStatusSent    JobStatus = "sent"
	JobStatusFailed  JobStatus = "failed"
)

// ConfirmationJob is the message the reconciliation engine hands off after a
// capture commits. It is self-contained: the consumer renders the invoice and
// trip sheet from this alone, without reading the database.
type ConfirmationJob struct {
	ID            uuid.UUID `json:"id"`
	BookingID     string    `json:"booking_id"`
	BookingRef    string    `json:"booking_ref"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	TourTitle     string    `json:"tour_title"`
	Destination   string    `json:"destination"`
	MeetingPoint  string    `json:"meeting_point"`
	StartDate     time.Time `json:"start_date"`
	Participants  int       `json:"participants"`
	OrderID       string    `json:"order_id"`
	PaymentID     string    `json:"payment_id"`
	Amount        int64     `json:"amount"` // minor units
	Currency      string    `json:"currency"`
	Status        JobStatus `json:"status"`
	LastError     *string   `json:"last_error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewConfirmationJob creates a queued job with a fresh id
func NewConfirmationJob() *ConfirmationJob {
	now := time.Now()
	return &ConfirmationJob{
		ID:        uuid.New(),
		Status:    JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ToJSON serializes the job for the wire
func (j *ConfirmationJob) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// PartitionKey routes all jobs for one booking to the same partition
func (j *ConfirmationJob) PartitionKey() string {
	return j.BookingID
}

// MarkSent marks the job as successfully delivered
func (j *ConfirmationJob) MarkSent() {
	j.Status = JobStatusSent
	j.UpdatedAt = time.Now()
}

// MarkFailed marks the job failed with the terminal error
func (j *ConfirmationJob) MarkFailed(err error) {
	j.Status = JobStatusFailed
	errStr := err.Error()
	j.LastError = &errStr
	j.UpdatedAt = time.Now()
}

// AmountDisplay formats the minor-unit amount for humans (25000 -> "INR 250.00")
func (j *ConfirmationJob) AmountDisplay() string {
	return fmt.Sprintf("%s %.2f", j.Currency, float64(j.Amount)/100)
}
