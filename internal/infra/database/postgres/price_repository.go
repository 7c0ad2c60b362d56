package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/pkg/reqctx"
)

// PriceRepository implements market.PriceSeriesProvider and
// market.WatermarkReader over stock_prices ⨝ stock_info
type PriceRepository struct {
	pool *Pool
	sf   singleflight.Group

	selectLatest func(ctx context.Context) (market.Date, error)
}

// NewPriceRepository creates a new PriceRepository
func NewPriceRepository(pool *Pool) *PriceRepository {
	r := &PriceRepository{pool: pool}
	r.selectLatest = r.selectLatestTradeDate
	return r
}

const selectSeriesSQL = `
	SELECT
		i.ticker,
		p.date::date,
		COALESCE(i.fullname, ''),
		COALESCE(i.marketcap, 0)::float8,
		COALESCE(p.open, 0)::float8,
		COALESCE(p.high, 0)::float8,
		COALESCE(p.low, 0)::float8,
		p.close::float8,
		COALESCE(p.volume, 0)::float8
	FROM stock_prices p
	JOIN stock_info i ON i.id = p.stock_id
	WHERE i.ticker = ANY ($1::text[])
	  AND p.date::date BETWEEN $2::date AND $3::date
	  AND p.close IS NOT NULL
	ORDER BY i.ticker, p.date ASC
`

// FetchSeries returns ascending daily bars per ticker for [start, end].
// The connection is held only for the duration of this call.
func (r *PriceRepository) FetchSeries(ctx context.Context, tickers []string, start, end market.Date) (map[string][]market.PriceBar, error) {
	tickers = market.NormalizeTickers(tickers)
	series := make(map[string][]market.PriceBar, len(tickers))
	if len(tickers) == 0 {
		return series, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, wrapAcquireError(err)
	}
	defer conn.Release()

	ctx = reqctx.WithQueryName(ctx, "price_series")
	rows, err := conn.Query(ctx, selectSeriesSQL, tickers, start.Time, end.Time)
	if err != nil {
		return nil, wrapQueryError("query price series", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bar  market.PriceBar
			date time.Time
		)
		if err := rows.Scan(
			&bar.Ticker,
			&date,
			&bar.FullName,
			&bar.MarketCap,
			&bar.Open,
			&bar.High,
			&bar.Low,
			&bar.Close,
			&bar.Volume,
		); err != nil {
			return nil, fmt.Errorf("scan price bar: %w", err)
		}
		bar.Date = market.DateOf(date)
		series[bar.Ticker] = append(series[bar.Ticker], bar)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError("iterate price series", err)
	}

	return series, nil
}

// LatestTradeDate returns MAX(date) over stock_prices. Concurrent callers
// share one query; a caller whose shared query died with another caller's
// cancellation runs its own.
func (r *PriceRepository) LatestTradeDate(ctx context.Context) (market.Date, error) {
	v, err, shared := r.sf.Do("latest_trade_date", func() (any, error) {
		return r.selectLatest(ctx)
	})
	if err != nil && shared && isContextErr(err) && ctx.Err() == nil {
		log.Debug().Err(err).Msg("Shared latest trade date lookup cancelled, retrying")
		return r.selectLatest(ctx)
	}
	if err != nil {
		return market.Date{}, err
	}
	return v.(market.Date), nil
}

func (r *PriceRepository) selectLatestTradeDate(ctx context.Context) (market.Date, error) {
	var latest *time.Time
	ctx = reqctx.WithQueryName(ctx, "latest_trade_date")
	if err := r.pool.QueryRow(ctx, `SELECT MAX(date)::date FROM stock_prices`).Scan(&latest); err != nil {
		return market.Date{}, wrapQueryError("query latest trade date", err)
	}
	if latest == nil {
		return market.Date{}, fmt.Errorf("%w: stock_prices is empty", market.ErrNotFound)
	}
	return market.DateOf(*latest), nil
}

func wrapAcquireError(err error) error {
	if isContextErr(err) {
		return fmt.Errorf("acquire connection: %w", err)
	}
	return fmt.Errorf("%w: acquire connection: %v", market.ErrDataSourceUnavailable, err)
}

var _ market.PriceSeriesProvider = (*PriceRepository)(nil)
var _ market.WatermarkReader = (*PriceRepository)(nil)

// rowsToSlice is a small helper shared by the aggregate readers
func rowsToSlice[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
