package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyValidSignature(t *testing.T) {
	payload := []byte(`{"domain":"test.myshopify.com"}`)
	v := NewWebhookVerifier("shhh")

	require.NoError(t, v.Verify(payload, sign("shhh", payload)))
}

func TestVerifyWrongSecret(t *testing.T) {
	payload := []byte(`{"domain":"test.myshopify.com"}`)
	v := NewWebhookVerifier("shhh")

	assert.Error(t, v.Verify(payload, sign("other", payload)))
}

func TestVerifyTamperedPayload(t *testing.T) {
	v := NewWebhookVerifier("shhh")
	sig := sign("shhh", []byte(`{"a":1}`))

	assert.Error(t, v.Verify([]byte(`{"a":2}`), sig))
}

func TestVerifyMissingOrMalformedHeader(t *testing.T) {
	v := NewWebhookVerifier("shhh")

	assert.Error(t, v.Verify([]byte("{}"), ""))
	assert.Error(t, v.Verify([]byte("{}"), "%%%not-base64%%%"))
}
