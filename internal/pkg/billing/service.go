package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SaaSFox/app/models"
)

const defaultTransactionLimit = 50

// Service grants and consumes user credits and keeps the webhook log.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// ApplyCreditPurchase credits a user for a successful payment. In one
// transaction it increments credits_total by the purchased amount and then
// appends a "Credit Purchase" ledger entry in USD keyed by the payment id.
// A payment id that is already in the ledger is reported as Duplicate and
// changes nothing.
func (s *Service) ApplyCreditPurchase(ctx context.Context, ev PaymentEvent) (*CreditResult, error) {
	_ = ctx
	userRef := strings.TrimSpace(ev.UserRef)
	eventID := strings.TrimSpace(ev.PaymentID)
	if userRef == "" || eventID == "" || ev.Credits <= 0 {
		return nil, ErrInvalidPayload
	}

	entry := &models.CreditTransaction{
		EventID:     eventID,
		Description: models.CreditDescriptionPurchase,
		Amount:      ev.Credits,
		Currency:    models.CreditCurrencyUSD,
	}
	user, applied, err := s.repo.ApplyCreditPurchase(userRef, entry)
	if err != nil {
		return nil, err
	}

	if applied {
		log.Infof("[Billing] credited %d to user %d for payment %s", ev.Credits, user.ID, eventID)
	} else {
		log.Infof("[Billing] payment %s already credited, skipping", eventID)
	}
	return &CreditResult{
		UserID:       user.ID,
		EventID:      eventID,
		Amount:       ev.Credits,
		CreditsTotal: user.CreditsTotal,
		Duplicate:    !applied,
	}, nil
}

// ConsumeCredits spends credits when the balance allows it.
func (s *Service) ConsumeCredits(ctx context.Context, userID uint, amount int64) (*models.User, error) {
	_ = ctx
	if userID == 0 {
		return nil, errors.New("user_id is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}
	return s.repo.ConsumeCredits(userID, amount)
}

// ListTransactions returns the newest ledger entries of a user.
func (s *Service) ListTransactions(ctx context.Context, userID uint, limit int) ([]models.CreditTransaction, error) {
	_ = ctx
	if userID == 0 {
		return nil, errors.New("user_id is required")
	}
	if limit <= 0 || limit > 200 {
		limit = defaultTransactionLimit
	}
	return s.repo.ListTransactions(userID, limit)
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		Payload:         storablePayload(in.PayloadJSON),
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// storablePayload keeps valid JSON as is and stores anything else as a JSON
// string, so malformed deliveries still land in the log.
func storablePayload(raw string) datatypes.JSON {
	if json.Valid([]byte(raw)) {
		return datatypes.JSON(raw)
	}
	quoted, _ := json.Marshal(raw)
	return datatypes.JSON(quoted)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
