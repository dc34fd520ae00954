package notifications

import (
	"bytes"
	"fmt"
	"html/template"
)

// RenderInvoice produces the HTML payment invoice for a confirmed booking.
func RenderInvoice(job *ConfirmationJob) (string, error) {
	return render(invoiceTemplate, job)
}

// RenderTripSheet produces the HTML trip-detail sheet: what the customer
// booked, where to show up, and when.
func RenderTripSheet(job *ConfirmationJob) (string, error) {
	return render(tripSheetTemplate, job)
}

// InvoiceText is the plain-text fallback body for the invoice email.
func InvoiceText(job *ConfirmationJob) string {
	return fmt.Sprintf(
		"Booking %s confirmed.\nTour: %s\nAmount paid: %s\nOrder: %s\nPayment: %s\n",
		job.BookingRef, job.TourTitle, job.AmountDisplay(), job.OrderID, job.PaymentID,
	)
}

func render(tmpl *template.Template, job *ConfirmationJob) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, job); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(j *ConfirmationJob) string { return j.AmountDisplay() },
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Payment Invoice</h2>
  <p>Hi {{.CustomerName}},</p>
  <p>Your payment for booking <strong>{{.BookingRef}}</strong> was received.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Tour</strong></td><td>{{.TourTitle}}</td></tr>
    <tr><td><strong>Participants</strong></td><td>{{.Participants}}</td></tr>
    <tr><td><strong>Amount Paid</strong></td><td>{{money .}}</td></tr>
    <tr><td><strong>Order ID</strong></td><td>{{.OrderID}}</td></tr>
    <tr><td><strong>Payment ID</strong></td><td>{{.PaymentID}}</td></tr>
  </table>
  <p>Thank you for travelling with Roamly.</p>
</body>
</html>`))

var tripSheetTemplate = template.Must(template.New("tripsheet").Funcs(template.FuncMap{
	"date": func(j *ConfirmationJob) string { return j.StartDate.Format("Monday, 02 Jan 2006") },
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Your Trip Details</h2>
  <p>Hi {{.CustomerName}}, your booking <strong>{{.BookingRef}}</strong> is confirmed!</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Tour</strong></td><td>{{.TourTitle}}</td></tr>
    <tr><td><strong>Destination</strong></td><td>{{.Destination}}</td></tr>
    <tr><td><strong>Start Date</strong></td><td>{{date .}}</td></tr>
    <tr><td><strong>Meeting Point</strong></td><td>{{.MeetingPoint}}</td></tr>
    <tr><td><strong>Participants</strong></td><td>{{.Participants}}</td></tr>
    <tr><td><strong>Contact</strong></td><td>{{.CustomerPhone}}</td></tr>
  </table>
  <p>Carry a government ID matching the booking name. See you there!</p>
</body>
</html>`))
