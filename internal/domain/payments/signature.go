package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Secret is one environment's signing key.
type Secret struct {
	Environment Environment
	Key         []byte
}

// Sign computes the gateway signature for an (order, payment) pair:
// hex(HMAC-SHA256(key, orderID + "|" + paymentID)).
func Sign(key []byte, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify tries each secret in order and returns the environment whose key
// produced signature. The caller's environment hint is never consulted.
func Verify(secrets []Secret, orderID, paymentID, signature string) (Environment, bool) {
	claimed, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(signature)))
	if err != nil || len(claimed) != sha256.Size {
		return "", false
	}

	for _, s := range secrets {
		if len(s.Key) == 0 {
			continue
		}
		mac := hmac.New(sha256.New, s.Key)
		mac.Write([]byte(orderID + "|" + paymentID))
		if hmac.Equal(mac.Sum(nil), claimed) {
			return s.Environment, true
		}
	}
	return "", false
}
