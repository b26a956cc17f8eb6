package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReferralCode is the invite code of a user. Each user has at most one.
type ReferralCode struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Code         string         `gorm:"uniqueIndex;size:20;not null" json:"code"`
	LastEditedAt *time.Time     `json:"last_edited_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ReferralCode) TableName() string { return "referral_codes" }

// Referral links a referrer to a referred user. A user can only be referred once.
type Referral struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ReferrerID     uint            `gorm:"not null;index" json:"referrer_id"`
	ReferredUserID uint            `gorm:"uniqueIndex;not null" json:"referred_user_id"`
	CodeUsed       string          `gorm:"size:20" json:"code_used"`
	EarnedUSDT     decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"earned_usdt"`
	EarnedINR      decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"earned_inr"`
	PurchaseCount  int             `gorm:"not null;default:0" json:"purchase_count"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`

	ReferredUser User `gorm:"foreignKey:ReferredUserID" json:"referred_user,omitempty"`
}

func (Referral) TableName() string { return "referrals" }

// Commission records one commission credit paid to a referrer for a purchase.
type Commission struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ReferrerID  uint            `gorm:"not null;index" json:"referrer_id"`
	BuyerID     uint            `gorm:"not null;index" json:"buyer_id"`
	OrderNumber string          `gorm:"size:64;uniqueIndex;not null" json:"order_number"`
	Rank        string          `gorm:"size:20;not null" json:"rank"`
	Percent     decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"percent"`
	Currency    string          `gorm:"size:8;not null" json:"currency"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (Commission) TableName() string { return "commissions" }

// ReferralStats aggregates a referrer's network. Not a table.
type ReferralStats struct {
	Invited        int64           `json:"invited"`
	Affiliates     int64           `json:"affiliates"`
	Purchases      int64           `json:"purchases"`
	CommissionUSDT decimal.Decimal `json:"commission_usdt"`
	CommissionINR  decimal.Decimal `json:"commission_inr"`
}
