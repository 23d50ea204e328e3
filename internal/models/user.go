package models

import "time"

// Roles a user can hold. Plain employees log expenses; hr funds wallets;
// admin and superadmin additionally manage users and ledger rows.
const (
	RoleUser       = "user"
	RoleHR         = "hr"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	switch s {
	case RoleUser, RoleHR, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// User represents application user.
// Money is stored in cents to avoid float error; WalletBalanceCent may go
// negative when an expense exceeds the deposited funds.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:64;not null"`
	Email        string `gorm:"size:128;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:16;index;not null;default:user"`

	WalletBalanceCent  int64 `gorm:"not null;default:0"`
	TotalDepositedCent int64 `gorm:"not null;default:0"`
	// TotalRecoveredCent is present in the schema but no operation writes it.
	TotalRecoveredCent int64 `gorm:"not null;default:0"`

	ProfilePicture string `gorm:"size:255"`

	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastActiveAt *time.Time
}
