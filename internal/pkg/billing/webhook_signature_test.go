package billing

import (
	"encoding/base64"
	"strconv"
	"testing"
	"time"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"data":{"payment_id":"p1"}}`)
	secret := "whsec_" + base64.StdEncoding.EncodeToString([]byte("top-secret-key"))
	now := time.Unix(1_760_000_000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)

	valid := SignWebhook(payload, "msg_1", ts, secret)
	h := WebhookHeaders{ID: "msg_1", Timestamp: ts, Signature: valid}
	if !VerifyWebhookSignature(payload, h, secret, now) {
		t.Fatalf("expected signature to validate")
	}

	h.Signature = "v1,bm9wZQ== " + valid
	if !VerifyWebhookSignature(payload, h, secret, now) {
		t.Fatalf("expected one matching entry in a signature list to validate")
	}

	h.Signature = valid
	if VerifyWebhookSignature([]byte(`{"tampered":true}`), h, secret, now) {
		t.Fatalf("expected tampered payload to fail")
	}
	if VerifyWebhookSignature(payload, WebhookHeaders{ID: "msg_2", Timestamp: ts, Signature: valid}, secret, now) {
		t.Fatalf("expected different message id to fail")
	}
	if VerifyWebhookSignature(payload, h, secret, now.Add(10*time.Minute)) {
		t.Fatalf("expected stale timestamp to fail")
	}
	if VerifyWebhookSignature(payload, h, "", now) {
		t.Fatalf("expected empty secret to fail")
	}
	if VerifyWebhookSignature(payload, WebhookHeaders{ID: "msg_1", Timestamp: ts}, secret, now) {
		t.Fatalf("expected missing signature to fail")
	}
}

func TestVerifyWebhookSignaturePlainSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	ts := strconv.FormatInt(now.Unix(), 10)
	secret := "not base64 !"

	sig := SignWebhook(payload, "id", ts, secret)
	if !VerifyWebhookSignature(payload, WebhookHeaders{ID: "id", Timestamp: ts, Signature: sig}, secret, now) {
		t.Fatalf("expected raw secret fallback to validate")
	}
}
