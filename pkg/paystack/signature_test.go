package paystack_test

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/distinctmentorship/payments/pkg/paystack"
	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidSignature(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"ps_ref_123"}}`)

	t.Run("matching signature validates", func(t *testing.T) {
		assert.True(t, paystack.ValidSignature(secret, body, sign(secret, body)))
	})

	t.Run("signature over a different body is rejected", func(t *testing.T) {
		tampered := []byte(`{"event":"charge.success","data":{"reference":"ps_ref_999"}}`)
		assert.False(t, paystack.ValidSignature(secret, tampered, sign(secret, body)))
	})

	t.Run("signature with the wrong key is rejected", func(t *testing.T) {
		assert.False(t, paystack.ValidSignature(secret, body, sign("sk_other", body)))
	})

	t.Run("empty signature never validates", func(t *testing.T) {
		assert.False(t, paystack.ValidSignature(secret, body, ""))
	})

	t.Run("garbage signature is rejected", func(t *testing.T) {
		assert.False(t, paystack.ValidSignature(secret, body, "not-a-hex-digest"))
	})
}
