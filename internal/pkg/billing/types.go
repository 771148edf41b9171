package billing

import "errors"

var (
	// ErrInvalidPayload means the webhook body lacks a user id or a positive
	// credit amount.
	ErrInvalidPayload = errors.New("Invalid payload")
	// ErrGatewayNotConfigured means no webhook signing key is configured.
	ErrGatewayNotConfigured = errors.New("Payment gateway is not configured")
	// ErrUserNotFound means the payment references an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInsufficientCredits means a consume request exceeds the balance.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// PaymentEvent is the normalized form of a "payment succeeded" webhook.
type PaymentEvent struct {
	Type      string
	PaymentID string
	UserRef   string
	Credits   int64
}

// CreditResult describes the outcome of applying a payment event.
type CreditResult struct {
	UserID       uint
	EventID      string
	Amount       int64
	CreditsTotal int64
	Duplicate    bool
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}
