package models

import (
	"time"

	"digilinex/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	GoogleID     *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)
	FullName     string         `gorm:"size:128" json:"full_name"`
	Phone        string         `gorm:"size:32" json:"phone"`
	Country      string         `gorm:"size:64" json:"country"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	Role         string         `gorm:"size:20;not null;index;default:'USER'" json:"role"` // USER | ADMIN
	Rank         string         `gorm:"size:20;not null;default:'STARTER'" json:"rank"`
	IsAffiliate  bool           `gorm:"default:false;index" json:"is_affiliate"`
	ReferredByID *uint          `gorm:"index" json:"referred_by_id"`
	FCMToken     string         `gorm:"size:512" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

// DisplayName prefers the full name, then the username, then the email.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
