package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AffiliateApplication is the onboarding record of the affiliate program. One per user.
type AffiliateApplication struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName        string          `gorm:"size:128;not null" json:"full_name"`
	Phone           string          `gorm:"size:32" json:"phone"`
	Country         string          `gorm:"size:64" json:"country"`
	Experience      string          `gorm:"type:text" json:"experience"`
	Channels        string          `gorm:"size:512" json:"channels"` // comma separated: youtube,telegram,...
	ContactHandle   string          `gorm:"size:128" json:"contact_handle"`
	Status          string          `gorm:"size:24;not null;index" json:"status"`
	TrustFee        decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"trust_fee"`
	TrustFeePaidAt  *time.Time      `json:"trust_fee_paid_at"`
	TrustFeeManual  bool            `gorm:"default:false" json:"trust_fee_manual"`
	ContactAt       *time.Time      `json:"contact_collected_at"`
	AutoApproveAt   *time.Time      `gorm:"index" json:"auto_approve_at"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	ReviewedByID    *uint           `json:"reviewed_by_id"`
	RejectionReason string          `gorm:"size:512" json:"rejection_reason"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AffiliateApplication) TableName() string { return "affiliate_applications" }
