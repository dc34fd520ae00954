package notifications

import (
	"context"
	"fmt"
)

// ConfirmationSender turns one confirmation job into the outbound emails:
// invoice + trip sheet to the customer, and a copy of the invoice to the
// admin distribution list.
type ConfirmationSender struct {
	email       EmailService
	adminEmails []string
}

func NewConfirmationSender(email EmailService, adminEmails []string) *ConfirmationSender {
	return &ConfirmationSender{
		email:       email,
		adminEmails: adminEmails,
	}
}

// Send delivers all emails for the job. The first failure aborts, so the
// consumer's retry covers every remaining recipient.
func (cs *ConfirmationSender) Send(ctx context.Context, job *ConfirmationJob) error {
	invoice, err := RenderInvoice(job)
	if err != nil {
		return err
	}
	tripSheet, err := RenderTripSheet(job)
	if err != nil {
		return err
	}
	text := InvoiceText(job)

	subject := fmt.Sprintf("Booking Confirmed - %s (%s)", job.TourTitle, job.BookingRef)
	if err := cs.email.SendHTML(ctx, job.CustomerEmail, subject, invoice, text); err != nil {
		return fmt.Errorf("failed to send invoice to customer: %w", err)
	}

	tripSubject := fmt.Sprintf("Trip Details - %s (%s)", job.TourTitle, job.BookingRef)
	if err := cs.email.SendHTML(ctx, job.CustomerEmail, tripSubject, tripSheet, text); err != nil {
		return fmt.Errorf("failed to send trip sheet to customer: %w", err)
	}

	adminSubject := fmt.Sprintf("New Confirmed Booking - %s (%s)", job.TourTitle, job.BookingRef)
	for _, admin := range cs.adminEmails {
		if err := cs.email.SendHTML(ctx, admin, adminSubject, invoice, text); err != nil {
			return fmt.Errorf("failed to send invoice to admin %s: %w", admin, err)
		}
	}

	return nil
}
