// Package money converts between major currency units as they arrive on the
// wire and the integer minor units (kobo, cents) used for every calculation.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToMinor converts a major-unit amount to minor units, rounding half away from zero.
func ToMinor(major float64) int64 {
	return decimal.NewFromFloat(major).Mul(hundred).Round(0).IntPart()
}

// ToMajor converts minor units back to a major-unit amount.
func ToMajor(minor int64) float64 {
	f, _ := decimal.New(minor, -2).Float64()
	return f
}

// LineMinor returns the minor-unit total of quantity units at a major-unit price.
// The product is taken in decimal and rounded once, so 3 x 0.335 does not accumulate drift.
func LineMinor(unitPrice float64, quantity int) int64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(hundred).
		Round(0).
		IntPart()
}

// Percent returns round(amount x percent / 100) in minor units.
func Percent(amount, percent int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(percent)).
		Div(hundred).
		Round(0).
		IntPart()
}
