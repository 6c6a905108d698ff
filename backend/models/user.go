package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"-"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
	Email            string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash     string         `json:"-" gorm:"not null"` // bcrypt, never serialize
	TwoFactorSecret  *string        `json:"-"`                 // base32 TOTP secret, never serialize
	TwoFactorEnabled bool           `json:"two_factor_enabled" gorm:"default:false"`
}

// HasTwoFactorSecret reports whether a TOTP secret has been stored, verified or not.
func (u *User) HasTwoFactorSecret() bool {
	return u.TwoFactorSecret != nil && *u.TwoFactorSecret != ""
}
