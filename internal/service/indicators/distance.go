package indicators

import "math"

// DistanceToHighPct is how far close sits below the period high, in percent.
// Returns +Inf (excluded by any band filter) for a non-positive high or
// non-finite inputs.
func DistanceToHighPct(close, highClose float64) float64 {
	if !isFinite(close) || !isFinite(highClose) || highClose <= 0 {
		return math.Inf(1)
	}
	return (highClose - close) / highClose * 100
}

// WithinBand reports 0 <= d <= withinPct
func WithinBand(d, withinPct float64) bool {
	return d >= 0 && d <= withinPct
}
