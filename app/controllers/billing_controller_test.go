package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SaaSFox/app/models"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/billing"
)

const testWebhookSecret = "whsec_c2VjcmV0LWZvci10ZXN0cw=="

const paymentBody = `{"type":"payment.succeeded","data":{"metadata":{"credits":"100","userId":"u1"},"payment_id":"p1"}}`

func setupWebhookApp(t *testing.T) (*fiber.App, *billing.MemoryRepository) {
	t.Helper()
	repo := billing.NewMemoryRepository()
	repo.AddUser(models.User{ID: 1, UUID: "u1"})

	orig := billingServiceFn
	billingServiceFn = func() *billing.Service { return billing.NewService(repo) }
	t.Cleanup(func() { billingServiceFn = orig })

	app := fiber.New()
	app.Post("/webhooks/payments", HandlePaymentWebhook)
	return app, repo
}

func postWebhook(t *testing.T, app *fiber.App, id, body string, sign bool) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhooks/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("webhook-id", id)
	req.Header.Set("webhook-timestamp", ts)
	if sign {
		req.Header.Set("webhook-signature", billing.SignWebhook([]byte(body), id, ts, testWebhookSecret))
	} else {
		req.Header.Set("webhook-signature", "v1,Zm9yZ2Vk")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestPaymentWebhookWithoutSecret(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "")
	app, repo := setupWebhookApp(t)

	status, body := postWebhook(t, app, "msg_1", paymentBody, true)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "Payment gateway is not configured", body["error"])
	assert.Empty(t, repo.WebhookEvents())
	assert.Empty(t, repo.Transactions())
}

func TestPaymentWebhookCreditsUser(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", testWebhookSecret)
	app, repo := setupWebhookApp(t)

	status, body := postWebhook(t, app, "msg_1", paymentBody, true)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(100), body["credits_total"])

	user, _ := repo.User(1)
	assert.Equal(t, int64(100), user.CreditsTotal)
	txs := repo.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "p1", txs[0].EventID)
	assert.Equal(t, "USD", txs[0].Currency)

	events := repo.WebhookEvents()
	require.Len(t, events, 1)
	assert.True(t, events[0].SignatureValid)
	assert.NotNil(t, events[0].ProcessedAt)
	assert.Empty(t, events[0].ProcessingError)
}

func TestPaymentWebhookRedelivery(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", testWebhookSecret)
	app, repo := setupWebhookApp(t)

	status, _ := postWebhook(t, app, "msg_1", paymentBody, true)
	require.Equal(t, fiber.StatusOK, status)

	// same delivery again
	status, body := postWebhook(t, app, "msg_1", paymentBody, true)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["duplicate"])

	// same payment under a new delivery id
	status, body = postWebhook(t, app, "msg_2", paymentBody, true)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["duplicate"])
	assert.Equal(t, float64(100), body["credits_total"])

	user, _ := repo.User(1)
	assert.Equal(t, int64(100), user.CreditsTotal)
	assert.Len(t, repo.Transactions(), 1)
}

func TestPaymentWebhookInvalidSignature(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", testWebhookSecret)
	app, repo := setupWebhookApp(t)

	status, body := postWebhook(t, app, "msg_1", paymentBody, false)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid_signature", body["error"])
	assert.Empty(t, repo.Transactions())

	// a valid delivery with the same id is still processed
	status, _ = postWebhook(t, app, "msg_1", paymentBody, true)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, repo.Transactions(), 1)
}

func TestPaymentWebhookInvalidPayload(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", testWebhookSecret)
	app, repo := setupWebhookApp(t)

	for i, payload := range []string{
		`{"data":{"metadata":{"userId":"u1"},"payment_id":"p1"}}`,
		`{"data":{"metadata":{"credits":"100"},"payment_id":"p1"}}`,
		`{"data":{"metadata":{"credits":"ten","userId":"u1"},"payment_id":"p1"}}`,
	} {
		status, body := postWebhook(t, app, "msg_"+strconv.Itoa(i), payload, true)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Invalid payload", body["error"])
	}

	user, _ := repo.User(1)
	assert.Equal(t, int64(0), user.CreditsTotal)
	assert.Empty(t, repo.Transactions())
}

func TestPaymentWebhookUnknownUser(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", testWebhookSecret)
	app, repo := setupWebhookApp(t)

	payload := `{"data":{"metadata":{"credits":5,"userId":"ghost"},"payment_id":"p9"}}`
	status, body := postWebhook(t, app, "msg_1", payload, true)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "user_not_found", body["error"])
	assert.Empty(t, repo.Transactions())
}

func TestPaymentWebhookIgnoresOtherEvents(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", testWebhookSecret)
	app, repo := setupWebhookApp(t)

	payload := `{"type":"refund.succeeded","data":{"metadata":{"credits":"100","userId":"u1"},"payment_id":"p1"}}`
	status, body := postWebhook(t, app, "msg_1", payload, true)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ignored"])
	assert.Empty(t, repo.Transactions())
}
