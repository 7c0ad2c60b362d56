package screener

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/pkg/metrics"
	"github.com/wonny/marketlens/internal/service/indicators"
)

const screenLowDi = "lowdi"

// LowDiQuery selects the tickers and as-of date for a DI20 screen
type LowDiQuery struct {
	AsOf    market.Date // zero means today in the default location
	Tickers []string
}

// ScreenLowDi flags tickers whose latest DI is at or below their own trailing
// DI quantile. Tickers with data gaps are dropped; a store outage or a
// cancelled context fails the whole screen. Output is sorted by ticker.
func (s *Service) ScreenLowDi(ctx context.Context, q LowDiQuery) ([]market.LowDiFlag, error) {
	tickers := market.NormalizeTickers(q.Tickers)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers to screen", market.ErrInvalidTickerSet)
	}

	asOf := q.AsOf
	if asOf.IsZero() {
		asOf = s.Today(nil)
	}
	lookback := asOf.AddDate(-s.cfg.LookbackYears, 0, 0)

	start := time.Now()
	defer func() {
		metrics.ScreenDuration.WithLabelValues(screenLowDi).Observe(time.Since(start).Seconds())
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	var mu sync.Mutex
	flags := make([]market.LowDiFlag, 0)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			flag, err := s.screenLowDiTicker(gctx, ticker, lookback, asOf)
			if err != nil {
				if isFatal(gctx, err) {
					return err
				}
				log.Debug().
					Err(err).
					Str("ticker", ticker).
					Str("as_of", asOf.String()).
					Msg("Ticker skipped in low DI screen")
				metrics.ScreenTickersSkipped.WithLabelValues(screenLowDi, skipReason(err)).Inc()
				return nil
			}
			if flag == nil {
				return nil
			}

			mu.Lock()
			flags = append(flags, *flag)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// a deadline that fired after the last fetch still voids the result
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(flags, func(i, j int) bool { return flags[i].Ticker < flags[j].Ticker })

	log.Debug().
		Str("as_of", asOf.String()).
		Int("tickers", len(tickers)).
		Int("flagged", len(flags)).
		Dur("elapsed", time.Since(start)).
		Msg("Low DI screen completed")

	return flags, nil
}

func (s *Service) screenLowDiTicker(ctx context.Context, ticker string, lookback, asOf market.Date) (*market.LowDiFlag, error) {
	series, err := s.prices.FetchSeries(ctx, []string{ticker}, lookback, asOf)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	bars := series[ticker]
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", market.ErrInsufficientData, ticker)
	}

	annotated := indicators.Annotate(bars, s.cfg.MAPeriod)
	return evaluateLowDi(ticker, annotated, s.cfg.Quantile, s.cfg.QuantileWindow)
}

// evaluateLowDi applies the threshold test to an annotated series.
// Returns (nil, nil) when the ticker simply does not pass.
func evaluateLowDi(ticker string, annotated []market.AnnotatedBar, p float64, window int) (*market.LowDiFlag, error) {
	pValue := indicators.Quantile(annotated, p, window)
	if pValue == nil {
		return nil, fmt.Errorf("%w: no DI values for %s", market.ErrInsufficientData, ticker)
	}

	latest := annotated[len(annotated)-1]
	if latest.DeviationIndex == nil {
		return nil, fmt.Errorf("%w: latest bar of %s has no DI", market.ErrInsufficientData, ticker)
	}

	if *latest.DeviationIndex > *pValue {
		return nil, nil
	}

	return &market.LowDiFlag{
		Ticker:    ticker,
		Close:     latest.Close,
		DI:        *latest.DeviationIndex,
		PValue:    *pValue,
		MarketCap: latest.MarketCap,
		FullName:  latest.FullName,
	}, nil
}

// isFatal separates batch-level failures from per-ticker data gaps
func isFatal(ctx context.Context, err error) bool {
	if errors.Is(err, market.ErrDataSourceUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return ctx.Err() != nil
}

func skipReason(err error) string {
	if errors.Is(err, market.ErrInsufficientData) {
		return "insufficient_data"
	}
	return "fetch_error"
}
