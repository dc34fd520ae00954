package notifications

import (
	"context"
	"log"

	"github.com/google/uuid"

	"roamly/internal/payments"
	"roamly/internal/tours"
)

// Notifier implements the post-confirmation hand-off from the reconciliation
// engine. It publishes a self-contained job to Kafka; when Kafka is disabled
// it falls back to sending the emails inline. Either way, failures are logged
// and swallowed: the capture has already committed and nothing here may undo
// or block it.
type Notifier struct {
	producer  JobProducer
	sender    *ConfirmationSender
	toursRepo tours.Repository
}

var _ payments.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier. producer may be nil (Kafka disabled);
// sender may be nil if no SMTP transport is configured.
func NewNotifier(producer JobProducer, sender *ConfirmationSender, toursRepo tours.Repository) *Notifier {
	return &Notifier{
		producer:  producer,
		sender:    sender,
		toursRepo: toursRepo,
	}
}

// BookingConfirmed assembles and dispatches the confirmation job
func (n *Notifier) BookingConfirmed(ctx context.Context, notice *payments.ConfirmationNotice) {
	job := NewConfirmationJob()
	job.BookingID = notice.BookingID
	job.BookingRef = notice.BookingRef
	job.CustomerName = notice.CustomerName
	job.CustomerEmail = notice.CustomerEmail
	job.CustomerPhone = notice.CustomerPhone
	job.StartDate = notice.StartDate
	job.Participants = notice.Participants
	job.OrderID = notice.OrderID
	job.PaymentID = notice.PaymentID
	job.Amount = notice.Amount
	job.Currency = notice.Currency

	n.attachTourDetails(ctx, job, notice.TourID)

	if n.producer != nil {
		if err := n.producer.PublishConfirmation(ctx, job); err != nil {
			log.Printf("Failed to publish confirmation job for booking %s: %v", job.BookingRef, err)
		}
		return
	}

	if n.sender != nil {
		if err := n.sender.Send(ctx, job); err != nil {
			log.Printf("Failed to send confirmation for booking %s: %v", job.BookingRef, err)
		}
	}
}

func (n *Notifier) attachTourDetails(ctx context.Context, job *ConfirmationJob, tourID string) {
	id, err := uuid.Parse(tourID)
	if err != nil {
		return
	}
	tour, err := n.toursRepo.GetTourByID(ctx, id)
	if err != nil {
		log.Printf("Tour %s not readable for confirmation job: %v", tourID, err)
		return
	}
	job.TourTitle = tour.Title
	job.Destination = tour.Destination
	job.MeetingPoint = tour.MeetingPoint
}
