package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentLeg is the part of a price taken from one wallet.
type PaymentLeg struct {
	Purpose string          `json:"purpose"`
	Amount  decimal.Decimal `json:"amount"`
}

// OrderBase holds the fields common to every purchase record.
// Orders are written once, inside the settlement transaction.
type OrderBase struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderNumber    string          `gorm:"size:64;uniqueIndex;not null" json:"order_number"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	Currency       string          `gorm:"size:8;not null" json:"currency"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Legs           string          `gorm:"type:text;not null" json:"-"` // JSON []PaymentLeg
	ReferrerID     *uint           `gorm:"index" json:"referrer_id,omitempty"`
	CommissionPaid decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"commission_paid"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Order is the purchase of a digital product.
type Order struct {
	OrderBase
	ProductID    uint   `gorm:"not null;index" json:"product_id"`
	ProductTitle string `gorm:"size:160" json:"product_title"`
}

func (Order) TableName() string { return "orders" }

// DatabaseOrder is the purchase of a contact-database package.
type DatabaseOrder struct {
	OrderBase
	PackageID      uint       `gorm:"not null;index" json:"package_id"`
	CategoryID     uint       `gorm:"not null;index" json:"category_id"`
	PackageName    string     `gorm:"size:128" json:"package_name"`
	CategoryName   string     `gorm:"size:128" json:"category_name"`
	RecordsCount   int        `json:"records_count"`
	DeliveryStatus string     `gorm:"size:20;not null;index" json:"delivery_status"` // PROCESSING | DELIVERED
	DeliveryKey    string     `gorm:"size:512" json:"-"`
	DeliveredAt    *time.Time `json:"delivered_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (DatabaseOrder) TableName() string { return "database_orders" }

// SoftwareOrder is the purchase of a marketing software license.
type SoftwareOrder struct {
	OrderBase
	SoftwareID   uint       `gorm:"not null;index" json:"software_id"`
	SoftwareName string     `gorm:"size:160" json:"software_name"`
	LicenseKey   string     `gorm:"size:64;uniqueIndex;not null" json:"license_key"`
	TrialEndsAt  *time.Time `json:"trial_ends_at"`
}

func (SoftwareOrder) TableName() string { return "software_orders" }
