package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/SaaSFox/app/models"
)

type providerAccountRepository struct {
	db *gorm.DB
}

func NewProviderAccountRepository(db *gorm.DB) ProviderAccountRepository {
	return &providerAccountRepository{db: db}
}

func (r *providerAccountRepository) GetByProviderUserID(provider, providerUserID string) (*models.ProviderAccount, error) {
	var acc models.ProviderAccount
	err := r.db.Where("provider = ? AND provider_user_id = ?", provider, providerUserID).First(&acc).Error
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Upsert stores the identity, refreshing tokens when it already exists.
func (r *providerAccountRepository) Upsert(account *models.ProviderAccount) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
	}).Create(account).Error
}

func (r *providerAccountRepository) ListByUserID(userID uint) ([]models.ProviderAccount, error) {
	var out []models.ProviderAccount
	err := r.db.Where("user_id = ?", userID).Order("provider").Find(&out).Error
	return out, err
}
