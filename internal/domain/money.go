package domain

import "github.com/shopspring/decimal"

// Money is a monetary amount in integer minor units (cents, kopecks, ...).
type Money int64

// MoneyFromDecimal converts an amount expressed in major units into minor
// units, rounding half-up (toward positive infinity) to the smallest tradable
// unit: 0.005 becomes 0.01 and -0.005 becomes 0.00.
func MoneyFromDecimal(amount decimal.Decimal, minorDigits int32) Money {
	return Money(amount.Shift(minorDigits).Add(decimal.New(5, -1)).Floor().IntPart())
}

// Decimal renders m back into major units.
func (m Money) Decimal(minorDigits int32) decimal.Decimal {
	return decimal.New(int64(m), -minorDigits)
}
