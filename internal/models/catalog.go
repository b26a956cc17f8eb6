package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DatabaseCategory groups priced contact-database packages (e.g. "Real estate investors").
type DatabaseCategory struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:128;not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;size:160;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	IconURL     string         `gorm:"size:512" json:"icon_url"`
	SortOrder   int            `gorm:"not null;default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Packages []DatabasePackage `gorm:"foreignKey:CategoryID" json:"packages,omitempty"`
}

func (DatabaseCategory) TableName() string { return "database_categories" }

type DatabasePackage struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CategoryID   uint            `gorm:"not null;index" json:"category_id"`
	Name         string          `gorm:"size:128;not null" json:"name"`
	RecordsCount int             `gorm:"not null;default:0" json:"records_count"`
	PriceUSDT    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price_usdt"`
	PriceINR     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price_inr"`
	DataFileKey  string          `gorm:"size:512" json:"-"` // object store key of the CSV
	SampleURL    string          `gorm:"size:512" json:"sample_url"`
	SortOrder    int             `gorm:"not null;default:0" json:"sort_order"`
	IsActive     bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	Category *DatabaseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (DatabasePackage) TableName() string { return "database_packages" }

func (p *DatabasePackage) Price(currency string) decimal.Decimal {
	return pick(currency, p.PriceUSDT, p.PriceINR)
}

// DigitalProduct is a downloadable product sold in the marketplace.
type DigitalProduct struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Title         string          `gorm:"size:160;not null" json:"title"`
	Slug          string          `gorm:"uniqueIndex;size:200;not null" json:"slug"`
	Description   string          `gorm:"type:text" json:"description"`
	CoverImageURL string          `gorm:"size:512" json:"cover_image_url"`
	PriceUSDT     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price_usdt"`
	PriceINR      decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price_inr"`
	FileKey       string          `gorm:"size:512" json:"-"`
	IsActive      bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (DigitalProduct) TableName() string { return "digital_products" }

func (p *DigitalProduct) Price(currency string) decimal.Decimal {
	return pick(currency, p.PriceUSDT, p.PriceINR)
}

// MarketingSoftware is an admin-managed software listing with trial terms.
type MarketingSoftware struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:160;not null" json:"name"`
	Slug        string          `gorm:"uniqueIndex;size:200;not null" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Features    string          `gorm:"type:text" json:"-"` // JSON array
	LogoURL     string          `gorm:"size:512" json:"logo_url"`
	PriceUSDT   decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price_usdt"`
	PriceINR    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price_inr"`
	TrialDays   int             `gorm:"not null;default:0" json:"trial_days"`
	TrialTerms  string          `gorm:"type:text" json:"trial_terms"`
	DownloadURL string          `gorm:"size:512" json:"-"`
	IsActive    bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	FeatureList []string `gorm:"-" json:"features"`
}

func (MarketingSoftware) TableName() string { return "marketing_software" }

func (s *MarketingSoftware) Price(currency string) decimal.Decimal {
	return pick(currency, s.PriceUSDT, s.PriceINR)
}

// BeforeSave serialises FeatureList into the Features column.
func (s *MarketingSoftware) BeforeSave(tx *gorm.DB) error {
	if s.FeatureList == nil {
		s.FeatureList = []string{}
	}
	b, err := json.Marshal(s.FeatureList)
	if err != nil {
		return err
	}
	s.Features = string(b)
	return nil
}

func (s *MarketingSoftware) AfterFind(tx *gorm.DB) error {
	s.FeatureList = []string{}
	if s.Features == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.Features), &s.FeatureList)
}

func pick(currency string, usdt, inr decimal.Decimal) decimal.Decimal {
	if currency == "INR" {
		return inr
	}
	return usdt
}
