package billing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ManuelReschke/SaaSFox/app/models"
)

// creditAmount accepts the credits metadata both as a JSON string ("100")
// and as a number (100).
type creditAmount struct {
	value int64
	set   bool
}

func (c *creditAmount) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
	} else {
		s = string(raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("credits %q is not an integer", s)
	}
	c.value = v
	c.set = true
	return nil
}

type rawPaymentWebhook struct {
	Type string `json:"type"`
	Data struct {
		PaymentID string `json:"payment_id"`
		Metadata  struct {
			Credits creditAmount `json:"credits"`
			UserID  string       `json:"userId"`
		} `json:"metadata"`
	} `json:"data"`
}

// ParsePaymentWebhook extracts the payment id, user reference and credit
// amount from a webhook body shaped
//
//	{"type": "...", "data": {"payment_id": "...", "metadata": {"credits": "100", "userId": "..."}}}
//
// A missing user id or a missing, malformed or non-positive credit amount
// yields ErrInvalidPayload.
func ParsePaymentWebhook(payload []byte) (*PaymentEvent, error) {
	var raw rawPaymentWebhook
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ev := &PaymentEvent{
		Type:      strings.TrimSpace(raw.Type),
		PaymentID: strings.TrimSpace(raw.Data.PaymentID),
		UserRef:   strings.TrimSpace(raw.Data.Metadata.UserID),
		Credits:   raw.Data.Metadata.Credits.value,
	}
	if ev.UserRef == "" {
		return nil, fmt.Errorf("%w: metadata.userId is required", ErrInvalidPayload)
	}
	if !raw.Data.Metadata.Credits.set || ev.Credits <= 0 {
		return nil, fmt.Errorf("%w: metadata.credits must be a positive integer", ErrInvalidPayload)
	}
	if ev.PaymentID == "" {
		return nil, fmt.Errorf("%w: data.payment_id is required", ErrInvalidPayload)
	}
	return ev, nil
}

// IsPaymentSucceeded reports whether the event type grants credits. Bodies
// without a type are treated as payment success.
func IsPaymentSucceeded(eventType string) bool {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "", models.WebhookEventPaymentSucceeded:
		return true
	default:
		return false
	}
}
