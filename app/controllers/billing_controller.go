package controllers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SaaSFox/app/models"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/billing"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
)

// HandlePaymentWebhook credits users for successful payments.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	secret := strings.TrimSpace(env.GetEnv("PAYMENT_WEBHOOK_SECRET", ""))
	if secret == "" {
		log.Error("[Billing] PAYMENT_WEBHOOK_SECRET is not set, rejecting webhook")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": billing.ErrGatewayNotConfigured.Error()})
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)
	headers := billing.WebhookHeaders{
		ID:        firstHeaderValue(c, "webhook-id"),
		Timestamp: firstHeaderValue(c, "webhook-timestamp"),
		Signature: firstHeaderValue(c, "webhook-signature"),
	}
	eventType := peekEventType(rawBody)

	svc := billingServiceFn()
	ctx, cancel := requestContext(c)
	defer cancel()

	signatureValid := billing.VerifyWebhookSignature(rawBody, headers, secret, time.Now())
	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        models.BillingProviderDodo,
		ProviderEventID: headers.ID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		log.Errorf("[Billing] failed to persist webhook %s: %v", headers.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !signatureValid {
		if created {
			_ = svc.MarkWebhookProcessed(ctx, stored.ID, errors.New("invalid webhook signature"))
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}
	// a redelivery of a webhook that was already handled cleanly
	if !created && stored.SignatureValid && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !billing.IsPaymentSucceeded(eventType) {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	event, err := billing.ParsePaymentWebhook(rawBody)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": billing.ErrInvalidPayload.Error()})
	}

	result, err := svc.ApplyCreditPurchase(ctx, *event)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
	switch {
	case errors.Is(err, billing.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user_not_found"})
	case errors.Is(err, billing.ErrInvalidPayload):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": billing.ErrInvalidPayload.Error()})
	case err != nil:
		log.Errorf("[Billing] applying payment %s failed: %v", event.PaymentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "credit_update_failed"})
	}

	if result.Duplicate {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true, "credits_total": result.CreditsTotal})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "credits_total": result.CreditsTotal})
}

func peekEventType(body []byte) string {
	var head struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(body, &head)
	return strings.TrimSpace(head.Type)
}
