package payments

import (
	"errors"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		event   string
	}{
		{
			name:  "capture event",
			body:  `{"id":"evt_1","event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_xyz","order_id":"order_abc","amount":25000}}}}`,
			event: EventPaymentCaptured,
		},
		{
			name:  "unknown event type still parses",
			body:  `{"event":"invoice.generated","payload":{}}`,
			event: "invoice.generated",
		},
		{
			name:    "missing event type",
			body:    `{"payload":{}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			body:    `-- not json --`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ParseEnvelope([]byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedEvent) {
					t.Fatalf("expected ErrMalformedEvent, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if env.Event != tt.event {
				t.Errorf("Event = %q, want %q", env.Event, tt.event)
			}
		})
	}
}

func TestEnvelopeEventID(t *testing.T) {
	body := []byte(`{"id":"evt_explicit","event":"payment.captured","payload":{}}`)
	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatal(err)
	}
	if got := env.EventID(body); got != "evt_explicit" {
		t.Errorf("EventID = %q, want explicit id", got)
	}

	// Without an explicit id, the derived id must be deterministic for the
	// same body so redeliveries still dedup.
	body2 := []byte(`{"event":"payment.captured","payload":{}}`)
	env2, err := ParseEnvelope(body2)
	if err != nil {
		t.Fatal(err)
	}
	first := env2.EventID(body2)
	second := env2.EventID(body2)
	if first == "" || first != second {
		t.Errorf("derived EventID not deterministic: %q vs %q", first, second)
	}

	body3 := []byte(`{"event":"payment.captured","payload":{"payment":null}}`)
	env3, _ := ParseEnvelope(body3)
	if env3.EventID(body3) == first {
		t.Error("different bodies derived the same event id")
	}
}

func TestEnvelopePaymentEntity(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_xyz","order_id":"order_abc","amount":25000,"currency":"INR","method":"upi"}}}}`)
	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatal(err)
	}

	entity, err := env.PaymentEntity()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entity.ID != "pay_xyz" || entity.OrderID != "order_abc" || entity.Amount != 25000 || entity.Method != "upi" {
		t.Errorf("unexpected entity: %+v", entity)
	}

	// Refund payload on a capture decode must fail, not silently zero
	refundBody := []byte(`{"event":"payment.captured","payload":{"refund":{"entity":{"id":"rfnd_1","payment_id":"pay_xyz"}}}}`)
	env2, _ := ParseEnvelope(refundBody)
	if _, err := env2.PaymentEntity(); !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("expected ErrMalformedEvent for missing payment entity, got %v", err)
	}
}

func TestEnvelopeRefundEntity(t *testing.T) {
	body := []byte(`{"event":"refund.processed","payload":{"refund":{"entity":{"id":"rfnd_1","payment_id":"pay_xyz","amount":25000,"status":"processed"}}}}`)
	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatal(err)
	}

	entity, err := env.RefundEntity()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entity.ID != "rfnd_1" || entity.PaymentID != "pay_xyz" || entity.Amount != 25000 {
		t.Errorf("unexpected entity: %+v", entity)
	}

	missing := []byte(`{"event":"refund.processed","payload":{}}`)
	env2, _ := ParseEnvelope(missing)
	if _, err := env2.RefundEntity(); !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("expected ErrMalformedEvent for missing refund entity, got %v", err)
	}
}
