package screener

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/marketlens/internal/domain/market"
)

var testAsOf = market.NewDate(2024, time.June, 28)

// fakePrices serves in-memory series filtered to the requested range
type fakePrices struct {
	mu     sync.Mutex
	series map[string][]market.PriceBar
	errs   map[string]error
	calls  atomic.Int32
	block  chan struct{}

	lastStart market.Date
}

func newFakePrices() *fakePrices {
	return &fakePrices{
		series: make(map[string][]market.PriceBar),
		errs:   make(map[string]error),
	}
}

func (f *fakePrices) set(ticker string, closes ...float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series[ticker] = barsEndingAt(ticker, testAsOf, closes...)
}

func (f *fakePrices) FetchSeries(ctx context.Context, tickers []string, start, end market.Date) (map[string][]market.PriceBar, error) {
	f.calls.Add(1)

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastStart = start

	out := make(map[string][]market.PriceBar)
	for _, t := range tickers {
		if err := f.errs[t]; err != nil {
			return nil, err
		}
		for _, b := range f.series[t] {
			if b.Date.Before(start.Time) || b.Date.After(end.Time) {
				continue
			}
			out[t] = append(out[t], b)
		}
	}
	return out, nil
}

// barsEndingAt lays closes on consecutive days so the last one lands on end
func barsEndingAt(ticker string, end market.Date, closes ...float64) []market.PriceBar {
	first := end.AddDate(0, 0, -(len(closes) - 1))
	bars := make([]market.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = market.PriceBar{
			Ticker:    ticker,
			Date:      first.AddDate(0, 0, i),
			FullName:  ticker + " Inc.",
			MarketCap: 1e9,
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
		}
	}
	return bars
}

// oscillating alternates around base for n bars
func oscillating(n int, base, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = base - amp
		} else {
			out[i] = base + amp
		}
	}
	return out
}

type fakeHighs struct {
	rows  []market.PeriodHighRow
	err   error
	start market.Date
	calls atomic.Int32
}

func (f *fakeHighs) SelectPeriodHigh(_ context.Context, _ []string, start market.Date) ([]market.PeriodHighRow, error) {
	f.calls.Add(1)
	f.start = start
	return f.rows, f.err
}

type fakeReturns struct {
	rows []market.ReturnRow
	err  error
	got  []string
}

func (f *fakeReturns) SelectReturns(_ context.Context, tickers []string) ([]market.ReturnRow, error) {
	f.got = tickers
	return f.rows, f.err
}

type fakeWatermark struct {
	date market.Date
	err  error
}

func (f fakeWatermark) LatestTradeDate(context.Context) (market.Date, error) {
	return f.date, f.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func ptr(v float64) *float64 { return &v }
