package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Valid(t *testing.T) {
	secret := "rzp_test_secret"
	orderID := "order_123"
	paymentID := "pay_456"

	assert.True(t, VerifySignature(secret, orderID, paymentID, sign(secret, orderID, paymentID)))
}

func TestVerifySignature_Tampered(t *testing.T) {
	secret := "rzp_test_secret"

	valid := sign(secret, "order_123", "pay_456")

	assert.False(t, VerifySignature(secret, "order_123", "pay_457", valid))
	assert.False(t, VerifySignature(secret, "order_124", "pay_456", valid))
	assert.False(t, VerifySignature("other_secret", "order_123", "pay_456", valid))
}

func TestVerifySignature_Malformed(t *testing.T) {
	assert.False(t, VerifySignature("secret", "order_123", "pay_456", ""))
	assert.False(t, VerifySignature("secret", "order_123", "pay_456", "zz-not-hex"))
}
