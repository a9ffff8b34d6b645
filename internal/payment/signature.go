package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SignCallback computes the signature the provider attaches to a settlement
// webhook: HMAC-SHA256 over the settlement fields, keyed with the shared
// callback secret.
func SignCallback(secret string, cb Callback) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s:%d:%s:%s", cb.Reference, cb.AmountCents, cb.UserID, cb.Status)
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// VerifyCallback checks a received webhook signature against the shared
// secret. Comparison is constant-time.
func VerifyCallback(secret string, cb Callback) bool {
	expected := SignCallback(secret, cb)
	return hmac.Equal([]byte(expected), []byte(strings.ToUpper(cb.Signature)))
}
