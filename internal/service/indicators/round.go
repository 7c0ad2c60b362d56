package indicators

import (
	"math"

	"github.com/shopspring/decimal"
)

// exactDigits keeps enough fractional digits of the binary value that
// rounding matches fixed-point formatting of the exact float (1.005 -> 1.00).
const exactDigits = -20

// Round2 rounds to 2 decimals, half away from zero, on the exact binary value
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloatWithExponent(v, exactDigits).Round(2).Float64()
	return f
}
