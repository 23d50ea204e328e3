package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/ishira-web/expense-tracker/internal/logger"
	"github.com/ishira-web/expense-tracker/internal/models"
	"github.com/ishira-web/expense-tracker/internal/util"

	"gorm.io/gorm"
)

// Sentinel errors returned by wallet operations.
var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("record not found")
)

// Notifier sends wallet-related emails. Implementations must not fail the
// calling operation: delivery errors are logged and swallowed because the
// wallet state has already changed by the time a mail goes out.
type Notifier interface {
	SendDeposit(email, name string, amountCent int64)
	SendLowBalance(emails []string, name string, balanceCent, totalDepositedCent int64)
}

// Service owns the wallet reconciliation rules: every deposit or expense
// mutation updates the owner's running counters and writes the matching
// ledger row inside a single transaction, with counter updates expressed as
// SQL increments so two concurrent operations cannot drop each other's delta.
type Service struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewService(db *gorm.DB, notifier Notifier) *Service {
	return &Service{DB: db, Notifier: notifier}
}

// ExpenseInput is the payload for CreateExpense.
type ExpenseInput struct {
	Date          time.Time
	AmountCent    int64
	Description   string
	Category      string
	PaymentMethod string
	Proof         string
}

// ExpensePatch carries the updatable fields of a ledger row. Nil fields are
// left untouched.
type ExpensePatch struct {
	Date          *time.Time
	AmountCent    *int64
	Description   *string
	Category      *string
	PaymentMethod *string
}

// Deposit credits a user's wallet: totalDeposited and walletBalance both grow
// by amountCent, and a deposit ledger row is written with the post-deposit
// balance snapshot. A confirmation email is sent to the user afterwards.
func (s *Service) Deposit(userID uint, amountCent int64) (*models.Expense, *models.User, error) {
	if userID == 0 {
		return nil, nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if err := util.ValidateAmountCent(amountCent); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var (
		user   models.User
		record models.Expense
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"total_deposited_cent": gorm.Expr("total_deposited_cent + ?", amountCent),
			"wallet_balance_cent":  gorm.Expr("wallet_balance_cent + ?", amountCent),
		}).Error; err != nil {
			return err
		}

		// re-read for the post-deposit snapshot
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		record = models.Expense{
			UserID:        userID,
			Date:          time.Now(),
			AmountCent:    0,
			Description:   "HR Deposit",
			Category:      models.CategoryOthers,
			PaymentMethod: models.PaymentOther,
			BalanceCent:   user.WalletBalanceCent,
			DepositCent:   amountCent,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, nil, err
	}

	if s.Notifier != nil && user.Email != "" {
		s.Notifier.SendDeposit(user.Email, user.Name, amountCent)
	}

	return &record, &user, nil
}

// CreateExpense debits a user's wallet and writes the expense ledger row.
// If the debit pushes the balance negative, the deficit magnitude is
// snapshotted on the row as its recover amount and every HR user is alerted.
// The snapshot is taken once, at creation time; later transactions never
// rewrite it.
func (s *Service) CreateExpense(userID uint, in ExpenseInput) (*models.Expense, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if err := util.ValidateAmountCent(in.AmountCent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if in.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if err := util.ValidateCategory(in.Category); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := util.ValidatePaymentMethod(in.PaymentMethod); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var (
		user   models.User
		record models.Expense
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("wallet_balance_cent", gorm.Expr("wallet_balance_cent - ?", in.AmountCent)).
			Error; err != nil {
			return err
		}

		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		var recoverCent int64
		if user.WalletBalanceCent < 0 {
			recoverCent = -user.WalletBalanceCent
		}

		record = models.Expense{
			UserID:            userID,
			Date:              in.Date,
			AmountCent:        in.AmountCent,
			Description:       in.Description,
			Category:          in.Category,
			PaymentMethod:     in.PaymentMethod,
			BalanceCent:       user.WalletBalanceCent,
			RecoverAmountCent: recoverCent,
			Proof:             in.Proof,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	if user.WalletBalanceCent < 0 {
		s.alertHR(&user)
	}

	return &record, nil
}

// alertHR mails every HR user about a wallet that went negative.
func (s *Service) alertHR(user *models.User) {
	if s.Notifier == nil {
		return
	}
	var hrs []models.User
	if err := s.DB.Where("role = ?", models.RoleHR).Find(&hrs).Error; err != nil {
		logger.Errorf("list hr users for low-balance alert: %v", err)
		return
	}
	emails := make([]string, 0, len(hrs))
	for _, hr := range hrs {
		if hr.Email != "" {
			emails = append(emails, hr.Email)
		}
	}
	if len(emails) == 0 {
		return
	}
	s.Notifier.SendLowBalance(emails, user.Name, user.WalletBalanceCent, user.TotalDepositedCent)
}

// UpdateExpense patches a ledger row. When the row is a deposit and the patch
// carries a new amount, the delta is applied to the owner's walletBalance and
// totalDeposited and the row's deposit field is forced to the new amount.
// Plain expense rows are updated in place with no wallet adjustment; their
// balance and recover-amount snapshots intentionally stay as written.
func (s *Service) UpdateExpense(id uint, patch ExpensePatch) (*models.Expense, error) {
	var record models.Expense
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: expense %d", ErrNotFound, id)
			}
			return err
		}

		if record.IsDeposit() && patch.AmountCent != nil {
			diff := *patch.AmountCent - record.DepositCent
			if err := tx.Model(&models.User{}).Where("id = ?", record.UserID).Updates(map[string]interface{}{
				"wallet_balance_cent":  gorm.Expr("wallet_balance_cent + ?", diff),
				"total_deposited_cent": gorm.Expr("total_deposited_cent + ?", diff),
			}).Error; err != nil {
				return err
			}
			// keep deposit and amount synchronized for deposit rows
			record.DepositCent = *patch.AmountCent
		}

		if patch.AmountCent != nil {
			record.AmountCent = *patch.AmountCent
		}
		if patch.Date != nil {
			record.Date = *patch.Date
		}
		if patch.Description != nil {
			record.Description = *patch.Description
		}
		if patch.Category != nil {
			record.Category = *patch.Category
		}
		if patch.PaymentMethod != nil {
			record.PaymentMethod = *patch.PaymentMethod
		}

		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteExpense removes a ledger row. Deposit rows are reversed first, so
// balance and totalDeposited return to their pre-deposit values. Plain
// expense rows are removed with no compensating credit: creation debited the
// wallet but deletion does not refund it.
func (s *Service) DeleteExpense(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var record models.Expense
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: expense %d", ErrNotFound, id)
			}
			return err
		}

		if record.IsDeposit() {
			if err := tx.Model(&models.User{}).Where("id = ?", record.UserID).Updates(map[string]interface{}{
				"wallet_balance_cent":  gorm.Expr("wallet_balance_cent - ?", record.DepositCent),
				"total_deposited_cent": gorm.Expr("total_deposited_cent - ?", record.DepositCent),
			}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&record).Error
	})
}
