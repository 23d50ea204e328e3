package util

import (
	"fmt"
	"time"

	"github.com/ishira-web/expense-tracker/internal/models"
)

// ValidateAmountCent checks that an amount is positive and below the cap.
func ValidateAmountCent(amountCent int64) error {
	if amountCent <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amountCent)
	}
	if amountCent >= 1_000_000_000 { // 10 million in cents
		return fmt.Errorf("amount too large, got %d", amountCent)
	}
	return nil
}

// ValidateDate checks the YYYY-MM-DD date format.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateCategory checks the category against the allowed set.
func ValidateCategory(category string) error {
	switch category {
	case models.CategoryFood, models.CategoryTransport, models.CategoryOthers:
		return nil
	}
	return fmt.Errorf("unknown category %q", category)
}

// ValidatePaymentMethod checks the payment method against the allowed set.
func ValidatePaymentMethod(method string) error {
	switch method {
	case models.PaymentCash, models.PaymentCard, models.PaymentOnline, models.PaymentOther:
		return nil
	}
	return fmt.Errorf("unknown payment method %q", method)
}
