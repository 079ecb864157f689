// Package currency renders decimal amounts for display.
package currency

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Format renders d in the ISO 4217 currency code, e.g. "$25,000.00". Unknown
// codes, and amounts whose minor units do not fit in an int64, fall back to a
// plain fixed-point rendering followed by the code.
func Format(d decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return d.StringFixed(2) + " " + code
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0)
	if !minor.BigInt().IsInt64() {
		return d.StringFixed(int32(cur.Fraction)) + " " + cur.Code
	}
	return money.New(minor.IntPart(), cur.Code).Display()
}
