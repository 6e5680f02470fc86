// Package valueobject holds the ledger's monetary rounding rule.
package valueobject

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places money is rounded to
const MoneyScale int32 = 2

// RoundMoney rounds d to two decimal places, half away from zero.
// For non-negative values this is half-up; negative values mirror it.
// Intermediate sums stay unrounded; only final figures go through here.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
