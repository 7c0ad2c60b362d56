package indicators

import (
	"math"
	"sort"

	"github.com/wonny/marketlens/internal/domain/market"
)

const (
	// DefaultQuantileWindow is the trailing bar count used for the DI threshold
	DefaultQuantileWindow = 200

	// DefaultLowDiQuantile flags the bottom 8% of a ticker's own DI history
	DefaultLowDiQuantile = 0.08
)

// Quantile returns the type-7 (linear interpolation) empirical quantile of the
// finite DI values in the trailing window bars. Returns nil if there are none.
func Quantile(series []market.AnnotatedBar, p float64, window int) *float64 {
	if window <= 0 {
		window = DefaultQuantileWindow
	}
	if len(series) > window {
		series = series[len(series)-window:]
	}

	values := make([]float64, 0, len(series))
	for _, bar := range series {
		if bar.DeviationIndex == nil || !isFinite(*bar.DeviationIndex) {
			continue
		}
		values = append(values, *bar.DeviationIndex)
	}

	q, ok := QuantileOf(values, p)
	if !ok {
		return nil
	}
	return &q
}

// QuantileOf computes the type-7 quantile of values. values is not modified.
func QuantileOf(values []float64, p float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0], true
	}
	if p >= 1 {
		return sorted[len(sorted)-1], true
	}

	idx := float64(len(sorted)-1) * p
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo], true
	}

	// weighted sum of neighbours; explicit conversions keep each product
	// rounded separately (no fused multiply-add) so thresholds are reproducible
	w := idx - float64(lo)
	return float64(sorted[lo]*(1-w)) + float64(sorted[hi]*w), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
