package types

import "github.com/shopspring/decimal"

// Money renders an integer cent amount for API responses. Cents stay the
// source of truth; the display string is derived on the way out.
type Money struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

// NewMoney builds a Money from cents.
func NewMoney(cents int64) Money {
	return Money{Cents: cents, Display: DisplayAmount(cents)}
}

// DisplayAmount formats cents as a two-decimal string, e.g. 630 -> "6.30".
func DisplayAmount(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}
