package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/pkg/reqctx"
)

// ReturnsRepository implements market.ReturnsReader
type ReturnsRepository struct {
	pool *Pool
}

// NewReturnsRepository creates a new ReturnsRepository
func NewReturnsRepository(pool *Pool) *ReturnsRepository {
	return &ReturnsRepository{pool: pool}
}

// Each horizon's reference is the most recent close at-or-before as_of minus
// the horizon; a zero or missing reference yields NULL.
const selectReturnsSQL = `
	WITH tickers AS (
		SELECT UNNEST($1::text[]) AS ticker
	),
	latest AS (
		SELECT MAX(p.date)::date AS as_of
		FROM stock_prices p
	),
	curr AS (
		SELECT i.ticker, i.fullname, i.marketcap, p.stock_id, l.as_of, p.close
		FROM stock_prices p
		JOIN stock_info i ON i.id = p.stock_id
		JOIN latest l ON l.as_of = p.date::date
		JOIN tickers t ON t.ticker = i.ticker
	)
	SELECT
		c.ticker,
		COALESCE(c.fullname, ''),
		c.as_of,
		c.close::float8 AS close_now,
		c.marketcap::float8,
		(c.close / NULLIF(d1.close_ref, 0) - 1)::float8 AS d1_ret,
		(c.close / NULLIF(w1.close_ref, 0) - 1)::float8 AS w1_ret,
		(c.close / NULLIF(m1.close_ref, 0) - 1)::float8 AS m1_ret,
		(c.close / NULLIF(m3.close_ref, 0) - 1)::float8 AS m3_ret,
		(c.close / NULLIF(m6.close_ref, 0) - 1)::float8 AS m6_ret
	FROM curr c
	LEFT JOIN LATERAL (%s) d1 ON TRUE
	LEFT JOIN LATERAL (%s) w1 ON TRUE
	LEFT JOIN LATERAL (%s) m1 ON TRUE
	LEFT JOIN LATERAL (%s) m3 ON TRUE
	LEFT JOIN LATERAL (%s) m6 ON TRUE
	ORDER BY c.ticker
`

const referenceCloseSQL = `
		SELECT p2.close AS close_ref
		FROM stock_prices p2
		WHERE p2.stock_id = c.stock_id
		  AND p2.date::date <= c.as_of - INTERVAL '%s'
		ORDER BY p2.date DESC
		LIMIT 1`

// returnHorizons are the lookbacks in d1, w1, m1, m3, m6 column order
var returnHorizons = []string{"1 day", "7 days", "1 month", "3 months", "6 months"}

var returnsSQL = func() string {
	args := make([]any, len(returnHorizons))
	for i, h := range returnHorizons {
		args[i] = fmt.Sprintf(referenceCloseSQL, h)
	}
	return fmt.Sprintf(selectReturnsSQL, args...)
}()

// SelectReturns computes multi-horizon returns as of the store watermark.
// Tickers without a bar on the watermark date are absent.
func (r *ReturnsRepository) SelectReturns(ctx context.Context, tickers []string) ([]market.ReturnRow, error) {
	tickers = market.NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return []market.ReturnRow{}, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, wrapAcquireError(err)
	}
	defer conn.Release()

	ctx = reqctx.WithQueryName(ctx, "returns")
	rows, err := conn.Query(ctx, returnsSQL, tickers)
	if err != nil {
		return nil, wrapQueryError("query returns", err)
	}

	out, err := rowsToSlice(rows, scanReturnRow)
	if err != nil {
		return nil, wrapQueryError("read returns", err)
	}
	return out, nil
}

func scanReturnRow(rows pgx.Rows) (market.ReturnRow, error) {
	var (
		row  market.ReturnRow
		asOf time.Time
	)
	if err := rows.Scan(
		&row.Ticker,
		&row.FullName,
		&asOf,
		&row.CloseNow,
		&row.MarketCap,
		&row.D1,
		&row.W1,
		&row.M1,
		&row.M3,
		&row.M6,
	); err != nil {
		return row, fmt.Errorf("scan return row: %w", err)
	}
	row.AsOf = market.DateOf(asOf)
	return row, nil
}

var _ market.ReturnsReader = (*ReturnsRepository)(nil)
