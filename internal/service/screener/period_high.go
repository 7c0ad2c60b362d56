package screener

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/pkg/metrics"
	"github.com/wonny/marketlens/internal/service/indicators"
)

const screenPeriodHigh = "period_high"

// PeriodHighQuery selects the window and band for a near-high scan
type PeriodHighQuery struct {
	Period    string
	Tickers   []string
	WithinPct *float64       // nil means the configured band
	Location  *time.Location // nil means the configured location
}

// ScanPeriodHigh lists tickers whose latest close is within WithinPct percent
// of their highest close since the period start, closest to the high first.
func (s *Service) ScanPeriodHigh(ctx context.Context, q PeriodHighQuery) ([]market.PeriodHighRecord, error) {
	loc := q.Location
	if loc == nil {
		loc = s.cfg.HighLocation
	}

	// grammar errors fail before touching the store
	periodStart, err := indicators.ParsePeriodStart(q.Period, s.clock(), loc)
	if err != nil {
		return nil, err
	}

	within := s.cfg.WithinPct
	if q.WithinPct != nil {
		if *q.WithinPct < 0 {
			return nil, fmt.Errorf("%w: within must be non-negative", market.ErrInvalidParameter)
		}
		within = *q.WithinPct
	}

	tickers := market.NormalizeTickers(q.Tickers)
	if len(tickers) == 0 {
		return []market.PeriodHighRecord{}, nil
	}

	start := time.Now()
	defer func() {
		metrics.ScreenDuration.WithLabelValues(screenPeriodHigh).Observe(time.Since(start).Seconds())
	}()

	rows, err := s.highs.SelectPeriodHigh(ctx, tickers, periodStart)
	if err != nil {
		return nil, err
	}

	records := rankNearHigh(rows, within)

	log.Debug().
		Str("period", q.Period).
		Str("period_start", periodStart.String()).
		Int("tickers", len(tickers)).
		Int("matched", len(records)).
		Msg("Period high scan completed")

	return records, nil
}

// rankNearHigh filters rows to the [0, within] distance band and orders them by
// unrounded distance; the stored distance is rounded afterwards.
func rankNearHigh(rows []market.PeriodHighRow, within float64) []market.PeriodHighRecord {
	type scored struct {
		rec      market.PeriodHighRecord
		distance float64
	}

	candidates := make([]scored, 0, len(rows))
	for _, row := range rows {
		if row.Close == nil || row.HighClose == nil {
			metrics.ScreenTickersSkipped.WithLabelValues(screenPeriodHigh, "insufficient_data").Inc()
			continue
		}

		d := indicators.DistanceToHighPct(*row.Close, *row.HighClose)
		if !indicators.WithinBand(d, within) {
			continue
		}

		candidates = append(candidates, scored{
			rec: market.PeriodHighRecord{
				Ticker:    row.Ticker,
				FullName:  row.FullName,
				MarketCap: row.MarketCap,
				Date:      row.Date,
				Close:     *row.Close,
				HighDate:  row.HighDate,
				HighClose: *row.HighClose,
			},
			distance: d,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	out := make([]market.PeriodHighRecord, len(candidates))
	for i, c := range candidates {
		out[i] = c.rec
		out[i].DistanceToHighPct = indicators.Round2(c.distance)
	}
	return out
}
