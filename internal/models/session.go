package models

import "time"

// Session stores issued refresh sessions (for logout, invalidation, audit).
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"` // UUID
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
