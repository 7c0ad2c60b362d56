package screener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/marketlens/internal/domain/market"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Quantile: 2}.withDefaults()
	assert.Equal(t, 20, cfg.MAPeriod)
	assert.Equal(t, 0.08, cfg.Quantile)
	assert.Equal(t, 200, cfg.QuantileWindow)
	assert.Equal(t, 1, cfg.LookbackYears)
	assert.Equal(t, 10.0, cfg.WithinPct)
	assert.Equal(t, 8, cfg.Workers)
	require.NotNil(t, cfg.HighLocation)

	custom := Config{MAPeriod: 5, Quantile: 0.1, Workers: 2}.withDefaults()
	assert.Equal(t, 5, custom.MAPeriod)
	assert.Equal(t, 0.1, custom.Quantile)
	assert.Equal(t, 2, custom.Workers)
}

func TestLatestTradeDate(t *testing.T) {
	clock := fixedClock(time.Date(2024, time.July, 1, 3, 0, 0, 0, time.UTC))

	svc := NewService(newFakePrices(), &fakeHighs{}, &fakeReturns{}, fakeWatermark{date: testAsOf}, Config{}).WithClock(clock)
	d, err := svc.LatestTradeDate(context.Background(), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, testAsOf, d)

	// empty store falls back to today
	svc = NewService(newFakePrices(), &fakeHighs{}, &fakeReturns{}, fakeWatermark{err: market.ErrNotFound}, Config{}).WithClock(clock)
	d, err = svc.LatestTradeDate(context.Background(), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", d.String())

	svc = NewService(newFakePrices(), &fakeHighs{}, &fakeReturns{}, fakeWatermark{err: market.ErrDataSourceUnavailable}, Config{})
	_, err = svc.LatestTradeDate(context.Background(), time.UTC)
	assert.True(t, errors.Is(err, market.ErrDataSourceUnavailable))
}

func TestReturns(t *testing.T) {
	returns := &fakeReturns{rows: []market.ReturnRow{{Ticker: "AAPL", CloseNow: 210, D1: ptr(0.01)}}}
	svc := NewService(newFakePrices(), &fakeHighs{}, returns, nil, Config{})

	rows, err := svc.Returns(context.Background(), []string{" aapl", "AAPL"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"AAPL"}, returns.got)

	rows, err = svc.Returns(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestPriceRange_Validation(t *testing.T) {
	svc := NewService(newFakePrices(), &fakeHighs{}, &fakeReturns{}, nil, Config{})

	_, err := svc.PriceRange(context.Background(), nil, testAsOf, testAsOf)
	assert.True(t, errors.Is(err, market.ErrInvalidTickerSet))

	_, err = svc.PriceRange(context.Background(), []string{"A"}, testAsOf, testAsOf.AddDate(0, 0, -1))
	assert.True(t, errors.Is(err, market.ErrInvalidDate))
}

func TestDeviationSeries(t *testing.T) {
	prices := newFakePrices()
	prices.set("A", oscillating(30, 100, 1)...)
	svc := NewService(prices, &fakeHighs{}, &fakeReturns{}, nil, Config{})

	bars, err := svc.DeviationSeries(context.Background(), "a", testAsOf.AddDate(0, -3, 0), testAsOf)
	require.NoError(t, err)
	require.Len(t, bars, 30)
	assert.Nil(t, bars[18].DeviationIndex)
	require.NotNil(t, bars[19].MovingAverage)
	assert.Equal(t, 100.0, *bars[19].MovingAverage)

	bars, err = svc.DeviationSeries(context.Background(), "NONE", testAsOf.AddDate(0, -3, 0), testAsOf)
	require.NoError(t, err)
	assert.Empty(t, bars)
}
