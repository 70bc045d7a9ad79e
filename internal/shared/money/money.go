// Package money converts between the ledger's decimal major units (rupees) and the
// gateway's integer minor units (paise).
package money

import (
	"github.com/shopspring/decimal"
)

// MinorPerMajor is fixed for the deployment currency.
const MinorPerMajor = 100

var hundred = decimal.NewFromInt(MinorPerMajor)

// ToMinor converts a major-unit amount to minor units, rounding half away from zero.
func ToMinor(major decimal.Decimal) int64 {
	return major.Mul(hundred).Round(0).IntPart()
}

// ToMajor converts minor units back to an exact major-unit amount.
func ToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// Format renders an amount for display.
func Format(currency string, major decimal.Decimal) string {
	s := major.StringFixed(2)
	switch currency {
	case "INR":
		return "₹" + s
	case "EUR":
		return "€" + s
	case "USD":
		return "$" + s
	default:
		return s + " " + currency
	}
}
