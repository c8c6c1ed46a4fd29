package domain

import "github.com/shopspring/decimal"

// Monetary amounts cross the API boundary as decimal USD and live
// internally as integer cents. No float64 arithmetic ever touches money.

var hundred = decimal.NewFromInt(100)

// CentsFromUSD converts a decimal USD amount to integer cents, rounding
// half away from zero.
func CentsFromUSD(usd decimal.Decimal) int64 {
	return usd.Mul(hundred).Round(0).IntPart()
}

// USDFromCents converts integer cents to a decimal USD amount.
func USDFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ClampPayoutPct maps any requested payout percentage into [0,100],
// rounding half to nearest: 87.6→88, 123→100, -5→0. Out-of-range input is
// defined behaviour, not an error.
func ClampPayoutPct(pct decimal.Decimal) int {
	n := pct.Round(0).IntPart()
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return int(n)
}
