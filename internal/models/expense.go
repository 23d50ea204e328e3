package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense categories and payment methods accepted by the API.
const (
	CategoryFood      = "Food"
	CategoryTransport = "Transport"
	CategoryOthers    = "Others"
)

const (
	PaymentCash   = "Cash"
	PaymentCard   = "Card"
	PaymentOnline = "Online"
	PaymentOther  = "Other"
)

// Expense is a ledger row: either a plain expense (DepositCent == 0) or a
// wallet deposit (DepositCent > 0, AmountCent == 0).
//
// BalanceCent and RecoverAmountCent are snapshots taken when the row was
// created: BalanceCent is the owner's wallet balance right after this row was
// applied, RecoverAmountCent is the deficit magnitude if that balance went
// negative. Neither is recomputed when later rows change the wallet.
type Expense struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"index;not null"`
	Date          time.Time `gorm:"index;not null"`
	AmountCent    int64     `gorm:"not null;default:0"`
	Description   string    `gorm:"size:255;not null"`
	Category      string    `gorm:"size:32;index;not null"`
	PaymentMethod string    `gorm:"size:16;not null"`

	BalanceCent       int64 `gorm:"not null;default:0"`
	DepositCent       int64 `gorm:"not null;default:0"`
	RecoverAmountCent int64 `gorm:"not null;default:0"`

	// Proof holds an opaque stored-file reference for the receipt image.
	Proof string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// IsDeposit reports whether this row records a wallet deposit.
func (e *Expense) IsDeposit() bool {
	return e.DepositCent > 0
}
