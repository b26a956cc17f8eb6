package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Applicant is a "work with us" hiring funnel record.
type Applicant struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	FullName       string          `gorm:"size:128;not null" json:"full_name"`
	Email          string          `gorm:"size:255;not null" json:"email"`
	Phone          string          `gorm:"size:32" json:"phone"`
	Position       string          `gorm:"size:128;not null" json:"position"`
	Experience     string          `gorm:"type:text" json:"experience"`
	ResumeURL      string          `gorm:"size:512" json:"resume_url"`
	Status         string          `gorm:"size:20;not null;index" json:"status"`
	TrustFeeStatus string          `gorm:"size:20;not null;default:'NOT_REQUIRED'" json:"trust_fee_status"`
	TrustFee       decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"trust_fee"`
	TrustFeePaidAt *time.Time      `json:"trust_fee_paid_at"`
	AdminNotes     string          `gorm:"type:text" json:"admin_notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Applicant) TableName() string { return "applicants" }
