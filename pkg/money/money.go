package money

import (
	"fmt"
	"math"
)

// Conversions between Square's integer minor-currency amounts and decimal
// display prices. Amounts stay integer cents through the whole sync pipeline;
// the decimal form exists only at the display boundary.

// Display converts integer cents to a decimal price.
func Display(cents int64) float64 {
	return float64(cents) / 100
}

// FromDisplay converts a decimal price back to integer cents, rounding half
// away from zero so accumulated float drift never shifts a cent.
func FromDisplay(price float64) int64 {
	return int64(math.Round(price * 100))
}

// Format renders cents as a currency string using integer math only.
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
