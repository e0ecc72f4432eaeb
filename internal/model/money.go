package model

import "github.com/shopspring/decimal"

// AmountPlaces is the number of decimal places money columns keep.
const AmountPlaces = 2

// MaxAmount is the largest value a NUMERIC(12,2) money column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// IsWholeCents reports whether the amount can be stored without rounding.
func IsWholeCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(AmountPlaces))
}
