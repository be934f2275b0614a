package storefront

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Webhook header names sent by the commerce platform.
const (
	HeaderShopDomain = "X-Storefront-Shop-Domain"
	HeaderHMAC       = "X-Storefront-Hmac-Sha256"
	HeaderTopic      = "X-Storefront-Topic"
)

// WebhookVerifier checks webhook authenticity using the app's shared
// secret. Signatures are base64-encoded HMAC-SHA256 digests of the raw
// request body.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier creates a verifier for the given shared secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Verify reports whether signature matches the HMAC of body.
// Comparison is constant time.
func (v *WebhookVerifier) Verify(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	expected, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expected)
}

// Sign computes the base64 HMAC signature for body. Used by tests and
// by the manual-sync tooling when replaying payloads.
func (v *WebhookVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
