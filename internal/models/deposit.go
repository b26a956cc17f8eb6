package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deposit is a manual top-up request reviewed by an admin.
type Deposit struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	Purpose      string          `gorm:"size:16;not null" json:"purpose"`
	Currency     string          `gorm:"size:8;not null" json:"currency"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	TxReference  string          `gorm:"size:255;uniqueIndex;not null" json:"tx_reference"` // chain hash or UPI reference
	ProofURL     string          `gorm:"size:512" json:"proof_url"`
	Status       string          `gorm:"size:20;not null;index" json:"status"` // PENDING, APPROVED, REJECTED
	ReviewedByID *uint           `json:"reviewed_by_id"`
	ReviewNote   string          `gorm:"size:512" json:"review_note"`
	ReviewedAt   *time.Time      `json:"reviewed_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Deposit) TableName() string {
	return "deposits"
}
