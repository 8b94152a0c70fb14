package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the expected payment-confirmation signature: the hex
// HMAC-SHA256 of "<gatewayOrderRef>|<gatewayPaymentRef>" under the gateway
// key secret. This mirrors what the gateway signs on its side.
func Signature(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a supplied signature against the recomputed value
// in constant time. Timing-attack resistance here is a hard requirement:
// the comparison must not leak how many leading characters matched.
func VerifySignature(secret, orderRef, paymentRef, provided string) bool {
	expected := Signature(secret, orderRef, paymentRef)
	return hmac.Equal([]byte(expected), []byte(provided))
}
