package models

import "github.com/shopspring/decimal"

func init() {
	// Money is rendered as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// Paystack amounts are integers in the currency's minor unit (kobo).
var minorPerMajor = decimal.NewFromInt(100)

func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorPerMajor).Round(0).IntPart()
}
