package handler

import (
	"fmt"
	"strconv"
)

// convertAmountToCent turns a decimal amount string into cents, rounding to
// two places.
func convertAmountToCent(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("amount must not be negative")
	}
	return int64(f*100 + 0.5), nil
}

// formatCentToAmount renders cents as a two-decimal string.
func formatCentToAmount(cent int64) string {
	return strconv.FormatFloat(float64(cent)/100.0, 'f', 2, 64)
}
