package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signBody(t *testing.T, body []byte, secret string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	secret := "whsec_test_secret"
	valid := signBody(t, body, secret)

	tests := []struct {
		name      string
		body      []byte
		signature string
		secret    string
		want      bool
	}{
		{
			name:      "valid signature",
			body:      body,
			signature: valid,
			secret:    secret,
			want:      true,
		},
		{
			name:      "tampered body",
			body:      []byte(`{"event":"payment.captured","payload":{"x":1}}`),
			signature: valid,
			secret:    secret,
			want:      false,
		},
		{
			name:      "single flipped hex digit",
			body:      body,
			signature: flipLastHexDigit(valid),
			secret:    secret,
			want:      false,
		},
		{
			name:      "wrong secret",
			body:      body,
			signature: valid,
			secret:    "whsec_other",
			want:      false,
		},
		{
			name:      "empty signature",
			body:      body,
			signature: "",
			secret:    secret,
			want:      false,
		},
		{
			name:      "empty secret",
			body:      body,
			signature: valid,
			secret:    "",
			want:      false,
		},
		{
			name:      "non-hex signature",
			body:      body,
			signature: "not-hex-at-all",
			secret:    secret,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifySignature(tt.body, tt.signature, tt.secret)
			if got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"event":"refund.processed"}`)
	secret := "whsec_roundtrip"

	sig := ComputeSignature(body, secret)
	if !VerifySignature(body, sig, secret) {
		t.Fatal("computed signature did not verify against the same body and secret")
	}
}

func flipLastHexDigit(sig string) string {
	last := sig[len(sig)-1]
	replacement := byte('0')
	if last == '0' {
		replacement = '1'
	}
	return sig[:len(sig)-1] + string(replacement)
}
