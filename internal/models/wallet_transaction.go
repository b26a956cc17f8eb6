package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletTransaction is an append-only ledger line. Amount is signed: positive = credit.
type WalletTransaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	Purpose      string          `gorm:"size:16;not null" json:"purpose"`
	Currency     string          `gorm:"size:8;not null" json:"currency"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"balance_after"`
	Type         string          `gorm:"size:30;not null;index" json:"type"` // PURCHASE, COMMISSION, TRUST_FEE, DEPOSIT, ADJUSTMENT, TRANSFER
	Reference    string          `gorm:"size:128;index" json:"reference"`    // order number, deposit id, application id
	CreatedAt    time.Time       `json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
