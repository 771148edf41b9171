package models

import "time"

const (
	CreditDescriptionPurchase = "Credit Purchase"
	CreditCurrencyUSD         = "USD"
)

// CreditTransaction is one entry of a user's credit ledger. EventID is the
// payment provider's identifier and doubles as the idempotency key.
type CreditTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	EventID     string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"event_id"`
	Description string    `gorm:"type:varchar(255);not null" json:"description"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Currency    string    `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
