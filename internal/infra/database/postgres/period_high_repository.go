package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/pkg/reqctx"
)

// PeriodHighRepository implements market.PeriodHighReader
type PeriodHighRepository struct {
	pool *Pool
}

// NewPeriodHighRepository creates a new PeriodHighRepository
func NewPeriodHighRepository(pool *Pool) *PeriodHighRepository {
	return &PeriodHighRepository{pool: pool}
}

// Per ticker: latest close at-or-before the store watermark, and the highest
// close in [start, watermark] (latest date wins ties). Tickers without bars
// come back with NULL close / high columns.
const selectPeriodHighSQL = `
	WITH latest AS (
		SELECT MAX(p.date)::date AS as_of
		FROM stock_prices p
	),
	info AS (
		SELECT i.id AS stock_id, i.ticker, i.fullname, i.marketcap
		FROM stock_info i
		WHERE i.ticker = ANY ($2::text[])
	),
	recent AS (
		SELECT DISTINCT ON (p.stock_id)
			p.stock_id, p.date::date AS recent_date, p.close AS recent_close
		FROM stock_prices p
		JOIN info i ON i.stock_id = p.stock_id
		CROSS JOIN latest l
		WHERE p.date::date <= l.as_of
		  AND p.close IS NOT NULL
		ORDER BY p.stock_id, p.date DESC
	),
	high AS (
		SELECT DISTINCT ON (p.stock_id)
			p.stock_id, p.date::date AS high_date, p.close AS high_close
		FROM stock_prices p
		JOIN info i ON i.stock_id = p.stock_id
		CROSS JOIN latest l
		WHERE p.date::date BETWEEN $1::date AND l.as_of
		  AND p.close IS NOT NULL
		ORDER BY p.stock_id, p.close DESC, p.date DESC
	)
	SELECT
		i.ticker,
		COALESCE(i.fullname, ''),
		i.marketcap::float8,
		r.recent_date,
		r.recent_close::float8,
		h.high_date,
		h.high_close::float8
	FROM info i
	LEFT JOIN recent r USING (stock_id)
	LEFT JOIN high h USING (stock_id)
	ORDER BY i.ticker
`

// SelectPeriodHigh returns one row per known ticker
func (r *PeriodHighRepository) SelectPeriodHigh(ctx context.Context, tickers []string, start market.Date) ([]market.PeriodHighRow, error) {
	tickers = market.NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return []market.PeriodHighRow{}, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, wrapAcquireError(err)
	}
	defer conn.Release()

	ctx = reqctx.WithQueryName(ctx, "period_high")
	rows, err := conn.Query(ctx, selectPeriodHighSQL, start.Time, tickers)
	if err != nil {
		return nil, wrapQueryError("query period high", err)
	}

	out, err := rowsToSlice(rows, scanPeriodHighRow)
	if err != nil {
		return nil, wrapQueryError("read period high", err)
	}
	return out, nil
}

func scanPeriodHighRow(rows pgx.Rows) (market.PeriodHighRow, error) {
	var (
		row                  market.PeriodHighRow
		recentDate, highDate *time.Time
	)
	if err := rows.Scan(
		&row.Ticker,
		&row.FullName,
		&row.MarketCap,
		&recentDate,
		&row.Close,
		&highDate,
		&row.HighClose,
	); err != nil {
		return row, fmt.Errorf("scan period high row: %w", err)
	}

	if recentDate != nil {
		row.Date = market.DateOf(*recentDate)
	}
	if highDate != nil {
		row.HighDate = market.DateOf(*highDate)
	}
	return row, nil
}

var _ market.PeriodHighReader = (*PeriodHighRepository)(nil)
