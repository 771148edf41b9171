package billing

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/SaaSFox/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	// ApplyCreditPurchase increments the user's credits_total and appends the
	// ledger entry atomically. It returns applied=false without mutating
	// anything when entry.EventID is already in the ledger.
	ApplyCreditPurchase(userRef string, entry *models.CreditTransaction) (*models.User, bool, error)
	ConsumeCredits(userID uint, amount int64) (*models.User, error)
	ListTransactions(userID uint, limit int) ([]models.CreditTransaction, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) ApplyCreditPurchase(userRef string, entry *models.CreditTransaction) (*models.User, bool, error) {
	var user models.User
	duplicate := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uuid = ?", userRef).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var seen int64
		if err := tx.Model(&models.CreditTransaction{}).Where("event_id = ?", entry.EventID).Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			duplicate = true
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			UpdateColumn("credits_total", gorm.Expr("credits_total + ?", entry.Amount)).Error; err != nil {
			return err
		}
		entry.UserID = user.ID
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.First(&user, user.ID).Error
	})

	// A concurrent delivery of the same event won the unique index race and
	// this transaction was rolled back.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if err := r.db.First(&user, user.ID).Error; err != nil {
			return nil, false, err
		}
		return &user, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &user, !duplicate, nil
}

func (r *gormRepository) ConsumeCredits(userID uint, amount int64) (*models.User, error) {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND credits_total - credits_used >= ?", userID, amount).
		UpdateColumn("credits_used", gorm.Expr("credits_used + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}

	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if res.RowsAffected == 0 {
		return &user, ErrInsufficientCredits
	}
	return &user, nil
}

func (r *gormRepository) ListTransactions(userID uint, limit int) ([]models.CreditTransaction, error) {
	var entries []models.CreditTransaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
