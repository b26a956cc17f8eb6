package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet is one sub-balance of a user: (purpose, currency).
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex:idx_wallet_owner;not null" json:"user_id"`
	Purpose   string          `gorm:"uniqueIndex:idx_wallet_owner;size:16;not null" json:"purpose"`
	Currency  string          `gorm:"uniqueIndex:idx_wallet_owner;size:8;not null" json:"currency"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
