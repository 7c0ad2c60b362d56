package market

import (
	"context"
)

// PriceSeriesProvider supplies time-ascending daily bars per ticker.
// Tickers are normalised before lookup; tickers without rows in range are absent from the map.
type PriceSeriesProvider interface {
	FetchSeries(ctx context.Context, tickers []string, start, end Date) (map[string][]PriceBar, error)
}

// PeriodHighReader returns per-ticker latest-close / period-high aggregates.
// The as-of watermark is the latest bar date in the store.
type PeriodHighReader interface {
	SelectPeriodHigh(ctx context.Context, tickers []string, start Date) ([]PeriodHighRow, error)
}

// ReturnsReader computes multi-horizon returns as of the latest bar date
type ReturnsReader interface {
	SelectReturns(ctx context.Context, tickers []string) ([]ReturnRow, error)
}

// StockInfoReader looks up ticker metadata
type StockInfoReader interface {
	GetByID(ctx context.Context, id int64) (*StockInfo, error)
	GetByTicker(ctx context.Context, ticker string) (*StockInfo, error)
	List(ctx context.Context, filter StockListFilter) (*StockListResult, error)
}

// WatermarkReader reports the latest trading date available in the store
type WatermarkReader interface {
	LatestTradeDate(ctx context.Context) (Date, error)
}
