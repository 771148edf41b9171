package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

const (
	webhookSecretPrefix    = "whsec_"
	webhookSignatureScheme = "v1"
	// WebhookTolerance bounds the allowed clock skew of webhook-timestamp.
	WebhookTolerance = 5 * time.Minute
)

// WebhookHeaders carries the Standard Webhooks headers of a delivery.
type WebhookHeaders struct {
	ID        string
	Timestamp string
	Signature string
}

// VerifyWebhookSignature checks a Standard Webhooks signature: base64
// HMAC-SHA256 of "id.timestamp.body" keyed with the secret. The signature
// header is a space separated list of "v1,<sig>" entries; one match is
// enough. Deliveries older or newer than WebhookTolerance are rejected.
func VerifyWebhookSignature(payload []byte, h WebhookHeaders, secret string, now time.Time) bool {
	id := strings.TrimSpace(h.ID)
	ts := strings.TrimSpace(h.Timestamp)
	sigHeader := strings.TrimSpace(h.Signature)
	key := webhookKey(secret)
	if id == "" || ts == "" || sigHeader == "" || len(key) == 0 {
		return false
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	sentAt := time.Unix(sec, 0)
	if now.Sub(sentAt) > WebhookTolerance || sentAt.Sub(now) > WebhookTolerance {
		return false
	}

	expected := signWebhook(key, id, ts, payload)
	for _, entry := range strings.Fields(sigHeader) {
		scheme, sig, ok := strings.Cut(entry, ",")
		if !ok || scheme != webhookSignatureScheme {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	return false
}

// SignWebhook produces a "v1,<sig>" header value. Used by tests and local
// tooling that replays deliveries.
func SignWebhook(payload []byte, id, timestamp, secret string) string {
	sig := signWebhook(webhookKey(secret), id, timestamp, payload)
	return webhookSignatureScheme + "," + base64.StdEncoding.EncodeToString(sig)
}

func signWebhook(key []byte, id, timestamp string, payload []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// webhookKey decodes "whsec_<base64>" secrets and falls back to the raw bytes
// for secrets that are not base64.
func webhookKey(secret string) []byte {
	s := strings.TrimSpace(secret)
	if s == "" {
		return nil
	}
	trimmed := strings.TrimPrefix(s, webhookSecretPrefix)
	if key, err := base64.StdEncoding.DecodeString(trimmed); err == nil && len(key) > 0 {
		return key
	}
	return []byte(s)
}
