package indicators

import (
	"github.com/wonny/marketlens/internal/domain/market"
)

// DefaultMAPeriod is the DI20 averaging window
const DefaultMAPeriod = 20

// Annotate adds the trailing simple moving average of close and the deviation
// index DI = (close - ma) / ma * 100 to every bar. Output is one-to-one with
// input; bars before the window fills carry nil ma/di, as do windows holding
// non-finite closes.
func Annotate(series []market.PriceBar, period int) []market.AnnotatedBar {
	out := make([]market.AnnotatedBar, len(series))

	for i, bar := range series {
		out[i] = market.AnnotatedBar{PriceBar: bar}
		if period <= 0 || i < period-1 {
			continue
		}

		// summed left to right per window so results don't depend on series length
		var sum float64
		for _, b := range series[i-period+1 : i+1] {
			sum += b.Close
		}
		ma := Round2(sum / float64(period))
		if !isFinite(ma) {
			continue
		}
		out[i].MovingAverage = &ma

		if ma != 0 {
			di := Round2((bar.Close - ma) / ma * 100)
			out[i].DeviationIndex = &di
		}
	}

	return out
}
