package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/marketlens/internal/domain/market"
)

func TestLatestTradeDate_SurvivesForeignCancellation(t *testing.T) {
	want := market.NewDate(2024, time.June, 28)

	var calls atomic.Int32
	started := make(chan struct{})
	r := &PriceRepository{}
	r.selectLatest = func(ctx context.Context) (market.Date, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return market.Date{}, wrapQueryError("query latest trade date", ctx.Err())
		}
		return want, nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var firstErr, secondErr error
	var second market.Date

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = r.LatestTradeDate(firstCtx)
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		second, secondErr = r.LatestTradeDate(context.Background())
	}()

	// let the second caller join the in-flight lookup
	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	wg.Wait()

	assert.ErrorIs(t, firstErr, context.Canceled)
	require.NoError(t, secondErr)
	assert.Equal(t, want, second)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLatestTradeDate_PassesThroughOwnErrors(t *testing.T) {
	r := &PriceRepository{}
	r.selectLatest = func(context.Context) (market.Date, error) {
		return market.Date{}, market.ErrNotFound
	}

	_, err := r.LatestTradeDate(context.Background())
	assert.ErrorIs(t, err, market.ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.selectLatest = func(ctx context.Context) (market.Date, error) {
		return market.Date{}, ctx.Err()
	}
	_, err = r.LatestTradeDate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
