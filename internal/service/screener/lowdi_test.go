package screener

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/marketlens/internal/domain/market"
)

func newLowDiService(prices *fakePrices) *Service {
	return NewService(prices, &fakeHighs{}, &fakeReturns{}, nil, Config{Workers: 4})
}

func TestScreenLowDi_FlagsOnlyDroppedTicker(t *testing.T) {
	prices := newFakePrices()
	prices.set("A", append(oscillating(250, 100, 1), 70)...)
	prices.set("B", append(oscillating(250, 100, 1), 130)...)
	prices.set("C", oscillating(10, 100, 1)...)

	svc := newLowDiService(prices)
	flags, err := svc.ScreenLowDi(context.Background(), LowDiQuery{
		AsOf:    testAsOf,
		Tickers: []string{"a", "B", "c"},
	})
	require.NoError(t, err)
	require.Len(t, flags, 1)

	flag := flags[0]
	assert.Equal(t, "A", flag.Ticker)
	assert.Equal(t, 70.0, flag.Close)
	assert.Less(t, flag.DI, 0.0)
	assert.LessOrEqual(t, flag.DI, flag.PValue)
	assert.Equal(t, "A Inc.", flag.FullName)
	assert.Equal(t, 1e9, flag.MarketCap)
}

func TestScreenLowDi_SortedByTicker(t *testing.T) {
	prices := newFakePrices()
	for _, ticker := range []string{"ZZZ", "MMM", "AAA"} {
		prices.set(ticker, append(oscillating(100, 50, 0.5), 30)...)
	}

	flags, err := newLowDiService(prices).ScreenLowDi(context.Background(), LowDiQuery{
		AsOf:    testAsOf,
		Tickers: []string{"ZZZ", "MMM", "AAA"},
	})
	require.NoError(t, err)
	require.Len(t, flags, 3)
	assert.Equal(t, "AAA", flags[0].Ticker)
	assert.Equal(t, "MMM", flags[1].Ticker)
	assert.Equal(t, "ZZZ", flags[2].Ticker)
}

func TestScreenLowDi_EmptyTickerSet(t *testing.T) {
	_, err := newLowDiService(newFakePrices()).ScreenLowDi(context.Background(), LowDiQuery{
		AsOf:    testAsOf,
		Tickers: []string{" ", ""},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, market.ErrInvalidTickerSet))
}

func TestScreenLowDi_UnknownTickerSkipped(t *testing.T) {
	prices := newFakePrices()
	prices.set("A", append(oscillating(250, 100, 1), 70)...)

	flags, err := newLowDiService(prices).ScreenLowDi(context.Background(), LowDiQuery{
		AsOf:    testAsOf,
		Tickers: []string{"A", "NOPE"},
	})
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "A", flags[0].Ticker)
}

func TestScreenLowDi_PerTickerErrorSkipped(t *testing.T) {
	prices := newFakePrices()
	prices.set("A", append(oscillating(250, 100, 1), 70)...)
	prices.set("B", append(oscillating(250, 100, 1), 70)...)
	prices.errs["B"] = errors.New("row decode failed")

	flags, err := newLowDiService(prices).ScreenLowDi(context.Background(), LowDiQuery{
		AsOf:    testAsOf,
		Tickers: []string{"A", "B"},
	})
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "A", flags[0].Ticker)
}

func TestScreenLowDi_DataSourceUnavailableFailsBatch(t *testing.T) {
	prices := newFakePrices()
	prices.set("A", append(oscillating(250, 100, 1), 70)...)
	prices.errs["B"] = fmt.Errorf("%w: connection refused", market.ErrDataSourceUnavailable)

	flags, err := newLowDiService(prices).ScreenLowDi(context.Background(), LowDiQuery{
		AsOf:    testAsOf,
		Tickers: []string{"A", "B"},
	})
	require.Error(t, err)
	assert.Nil(t, flags)
	assert.True(t, errors.Is(err, market.ErrDataSourceUnavailable))
}

func TestScreenLowDi_Cancelled(t *testing.T) {
	prices := newFakePrices()
	prices.set("A", append(oscillating(250, 100, 1), 70)...)
	prices.block = make(chan struct{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	flags, err := newLowDiService(prices).ScreenLowDi(ctx, LowDiQuery{
		AsOf:    testAsOf,
		Tickers: []string{"A"},
	})
	require.Error(t, err)
	assert.Nil(t, flags)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestScreenLowDi_LookbackIsOneYear(t *testing.T) {
	prices := newFakePrices()
	// 400 days of flat prices then a drop; only the last year is fetched
	prices.set("A", append(oscillating(400, 100, 1), 70)...)

	svc := newLowDiService(prices)
	flags, err := svc.ScreenLowDi(context.Background(), LowDiQuery{AsOf: testAsOf, Tickers: []string{"A"}})
	require.NoError(t, err)
	require.Len(t, flags, 1)

	assert.Equal(t, "2023-06-28", prices.lastStart.String())
}

func TestScreenLowDi_DefaultsAsOfToToday(t *testing.T) {
	prices := newFakePrices()
	prices.set("A", append(oscillating(250, 100, 1), 70)...)

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	svc := newLowDiService(prices).WithClock(fixedClock(time.Date(2024, time.June, 28, 18, 0, 0, 0, ny)))
	flags, err := svc.ScreenLowDi(context.Background(), LowDiQuery{Tickers: []string{"A"}})
	require.NoError(t, err)
	assert.Len(t, flags, 1)
}

func TestEvaluateLowDi_QuantileTie(t *testing.T) {
	// 15 values below -4, one equal, 183 above, latest -4: q(0.08) == -4
	var annotated []market.AnnotatedBar
	add := func(di float64) {
		annotated = append(annotated, market.AnnotatedBar{
			PriceBar:       market.PriceBar{Ticker: "TIE", Close: 96},
			DeviationIndex: ptr(di),
		})
	}
	for i := 0; i < 15; i++ {
		add(-10 + float64(i)*0.1)
	}
	add(-4)
	for i := 0; i < 183; i++ {
		add(1 + float64(i)*0.01)
	}
	add(-4)
	require.Len(t, annotated, 200)

	flag, err := evaluateLowDi("TIE", annotated, 0.08, 200)
	require.NoError(t, err)
	require.NotNil(t, flag)

	// idx = 199*0.08 lands between the two -4 entries
	n, p := 200, 0.08
	idx := float64(n-1) * p
	w := idx - math.Floor(idx)
	lo := -4.0 * (1 - w)
	hi := -4.0 * w
	assert.Equal(t, lo+hi, flag.PValue)
	assert.Equal(t, -4.0, flag.PValue)
	assert.Equal(t, -4.0, flag.DI)
}

func TestEvaluateLowDi_AboveThreshold(t *testing.T) {
	annotated := []market.AnnotatedBar{
		{DeviationIndex: ptr(-3)},
		{DeviationIndex: ptr(-1)},
		{DeviationIndex: ptr(2)},
	}
	flag, err := evaluateLowDi("X", annotated, 0.08, 200)
	require.NoError(t, err)
	assert.Nil(t, flag)
}

func TestEvaluateLowDi_InsufficientData(t *testing.T) {
	// no DI at all
	_, err := evaluateLowDi("X", []market.AnnotatedBar{{}, {}}, 0.08, 200)
	assert.True(t, errors.Is(err, market.ErrInsufficientData))

	// latest bar without DI
	_, err = evaluateLowDi("X", []market.AnnotatedBar{{DeviationIndex: ptr(-5)}, {}}, 0.08, 200)
	assert.True(t, errors.Is(err, market.ErrInsufficientData))
}

func TestIsFatal(t *testing.T) {
	ctx := context.Background()
	assert.True(t, isFatal(ctx, fmt.Errorf("x: %w", market.ErrDataSourceUnavailable)))
	assert.True(t, isFatal(ctx, context.Canceled))
	assert.False(t, isFatal(ctx, market.ErrInsufficientData))
	assert.False(t, isFatal(ctx, errors.New("decode")))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.True(t, isFatal(cancelled, errors.New("decode")))
}
