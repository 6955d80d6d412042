package converter

import "github.com/shopspring/decimal"

// FormatAmount renders an amount for display; whole amounts carry no decimal places.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}
