package screener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/service/indicators"
)

// Config holds the screen thresholds. Defaults reproduce the DI20 screen
// (MA20, bottom 8% of the trailing 200 DI values, one year of history) and
// the 10% near-high band.
type Config struct {
	MAPeriod       int
	Quantile       float64
	QuantileWindow int
	LookbackYears  int
	WithinPct      float64
	HighLocation   *time.Location // "today" for period parsing
	Workers        int            // per-ticker fan-out limit
}

// DefaultConfig returns the stock screen configuration
func DefaultConfig() Config {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return Config{
		MAPeriod:       indicators.DefaultMAPeriod,
		Quantile:       indicators.DefaultLowDiQuantile,
		QuantileWindow: indicators.DefaultQuantileWindow,
		LookbackYears:  1,
		WithinPct:      10,
		HighLocation:   loc,
		Workers:        8,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MAPeriod <= 0 {
		c.MAPeriod = d.MAPeriod
	}
	if c.Quantile < 0 || c.Quantile > 1 {
		c.Quantile = d.Quantile
	}
	if c.QuantileWindow <= 0 {
		c.QuantileWindow = d.QuantileWindow
	}
	if c.LookbackYears <= 0 {
		c.LookbackYears = d.LookbackYears
	}
	if c.WithinPct <= 0 {
		c.WithinPct = d.WithinPct
	}
	if c.HighLocation == nil {
		c.HighLocation = d.HighLocation
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// Service runs the indicator screens over the price store
type Service struct {
	prices    market.PriceSeriesProvider
	highs     market.PeriodHighReader
	returns   market.ReturnsReader
	watermark market.WatermarkReader

	cfg   Config
	clock func() time.Time
	cache *ResultCache
}

// NewService creates a new screener service
func NewService(
	prices market.PriceSeriesProvider,
	highs market.PeriodHighReader,
	returns market.ReturnsReader,
	watermark market.WatermarkReader,
	cfg Config,
) *Service {
	return &Service{
		prices:    prices,
		highs:     highs,
		returns:   returns,
		watermark: watermark,
		cfg:       cfg.withDefaults(),
		clock:     time.Now,
	}
}

// WithClock replaces the reference instant source
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Config returns the effective configuration
func (s *Service) Config() Config {
	return s.cfg
}

// Now returns the reference instant for the current request
func (s *Service) Now() time.Time {
	return s.clock()
}

// Today returns the current calendar date in loc
func (s *Service) Today(loc *time.Location) market.Date {
	if loc == nil {
		loc = s.cfg.HighLocation
	}
	return market.DateOf(s.clock().In(loc))
}

// LatestTradeDate returns the market as-of watermark, or today in loc when the
// store has no watermark reader.
func (s *Service) LatestTradeDate(ctx context.Context, loc *time.Location) (market.Date, error) {
	if s.watermark == nil {
		return s.Today(loc), nil
	}
	d, err := s.watermark.LatestTradeDate(ctx)
	if err != nil {
		if errors.Is(err, market.ErrNotFound) {
			return s.Today(loc), nil
		}
		return market.Date{}, err
	}
	return d, nil
}

// Returns loads multi-horizon return rows for tickers
func (s *Service) Returns(ctx context.Context, tickers []string) ([]market.ReturnRow, error) {
	tickers = market.NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return []market.ReturnRow{}, nil
	}

	rows, err := s.returns.SelectReturns(ctx, tickers)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []market.ReturnRow{}
	}
	return rows, nil
}

// PriceRange returns raw bars per ticker for [start, end]
func (s *Service) PriceRange(ctx context.Context, tickers []string, start, end market.Date) (map[string][]market.PriceBar, error) {
	tickers = market.NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: tickers are required", market.ErrInvalidTickerSet)
	}
	if end.Before(start.Time) {
		return nil, fmt.Errorf("%w: start %s is after end %s", market.ErrInvalidDate, start, end)
	}

	series, err := s.prices.FetchSeries(ctx, tickers, start, end)
	if err != nil {
		return nil, err
	}
	if series == nil {
		series = map[string][]market.PriceBar{}
	}
	return series, nil
}

// DeviationSeries returns one ticker's bars annotated with MA/DI over [start, end]
func (s *Service) DeviationSeries(ctx context.Context, ticker string, start, end market.Date) ([]market.AnnotatedBar, error) {
	series, err := s.PriceRange(ctx, []string{ticker}, start, end)
	if err != nil {
		return nil, err
	}

	for _, bars := range series {
		return indicators.Annotate(bars, s.cfg.MAPeriod), nil
	}
	return []market.AnnotatedBar{}, nil
}
