package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// ValidSignature checks the x-paystack-signature header: an HMAC-SHA512
// digest of the exact raw request body keyed with the secret key. The
// comparison is constant-time; an empty header never validates.
func ValidSignature(secretKey string, rawBody []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
