// Package types provides the fixed-point value types used across the ledger.
package types

import (
	"github.com/shopspring/decimal"
)

// Money is a monetary amount. Persisted as NUMERIC(14,2).
type Money = decimal.Decimal

// Quantity is a signed stock quantity. Fractional units ("0.5 kg") are allowed.
// Persisted as NUMERIC(14,3).
type Quantity = decimal.Decimal

const (
	MoneyPlaces    int32 = 2
	QuantityPlaces int32 = 3
)

// RoundMoney rounds half away from zero to cents.
func RoundMoney(m Money) Money {
	return m.Round(MoneyPlaces)
}

// RoundQuantity rounds half away from zero to the quantity precision.
func RoundQuantity(q Quantity) Quantity {
	return q.Round(QuantityPlaces)
}

// MustMoney parses a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s).Round(MoneyPlaces)
}

// MustQuantity parses a string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	return decimal.RequireFromString(s).Round(QuantityPlaces)
}

// HasMoneyPrecision reports whether m fits in two fraction digits.
func HasMoneyPrecision(m Money) bool {
	return m.Equal(m.Truncate(MoneyPlaces))
}

// HasQuantityPrecision reports whether q fits in three fraction digits.
func HasQuantityPrecision(q Quantity) bool {
	return q.Equal(q.Truncate(QuantityPlaces))
}

// Sum adds values, returning zero for an empty slice.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
