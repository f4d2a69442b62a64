package formulas

import (
	"math"

	"github.com/shopspring/decimal"
)

var half = decimal.NewFromInt(1).Div(decimal.NewFromInt(2))

// RoundHalfUp2 rounds a value to 2 decimal places with half-up semantics on
// the exact decimal value: floor(v*100 + 0.5) / 100. Going through decimal
// avoids binary-float truncation artifacts at .xx5 boundaries (e.g. 2.675,
// whose float64 representation sits just below the true half-cent).
func RoundHalfUp2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	d := decimal.NewFromFloat(v)
	rounded, _ := d.Shift(2).Add(half).Floor().Shift(-2).Float64()
	return rounded
}
