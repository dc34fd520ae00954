package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks that signature is the hex-encoded HMAC-SHA256 of
// the raw request body under the shared webhook secret. The comparison is
// constant-time; the raw body must be the exact bytes received on the wire,
// before any JSON decoding.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	return hmac.Equal(provided, expected)
}

// ComputeSignature produces the hex HMAC-SHA256 of body under secret.
// Used by tests and by tooling that replays webhook deliveries.
func ComputeSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
