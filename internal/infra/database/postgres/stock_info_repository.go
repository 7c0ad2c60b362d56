package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/pkg/reqctx"
)

// StockInfoRepository implements market.StockInfoReader
type StockInfoRepository struct {
	pool *Pool
}

// NewStockInfoRepository creates a new StockInfoRepository
func NewStockInfoRepository(pool *Pool) *StockInfoRepository {
	return &StockInfoRepository{pool: pool}
}

const selectStockInfoSQL = `
	SELECT
		id,
		ticker,
		COALESCE(fullname, ''),
		COALESCE(exchange, ''),
		COALESCE(country, ''),
		marketcap::float8
	FROM stock_info
`

// GetByID returns stock info by primary key
func (r *StockInfoRepository) GetByID(ctx context.Context, id int64) (*market.StockInfo, error) {
	ctx = reqctx.WithQueryName(ctx, "stock_info_by_id")
	row := r.pool.QueryRow(ctx, selectStockInfoSQL+` WHERE id = $1`, id)
	return scanStockInfo(row, fmt.Sprintf("id %d", id))
}

// GetByTicker returns stock info by ticker (case-insensitive)
func (r *StockInfoRepository) GetByTicker(ctx context.Context, ticker string) (*market.StockInfo, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("%w: ticker is required", market.ErrInvalidTickerSet)
	}

	ctx = reqctx.WithQueryName(ctx, "stock_info_by_ticker")
	row := r.pool.QueryRow(ctx, selectStockInfoSQL+` WHERE ticker = $1`, ticker)
	return scanStockInfo(row, "ticker "+ticker)
}

// List returns one page of stock_info rows matching the filter
func (r *StockInfoRepository) List(ctx context.Context, filter market.StockListFilter) (*market.StockListResult, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}

	whereClause, args := stockListWhere(filter)

	// Count total
	ctx = reqctx.WithQueryName(ctx, "stock_info_count")
	var totalCount int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM stock_info "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, wrapQueryError("count stock info", err)
	}

	query := fmt.Sprintf("%s %s %s LIMIT $%d OFFSET $%d",
		selectStockInfoSQL, whereClause, stockListOrderBy(filter), len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	ctx = reqctx.WithQueryName(ctx, "stock_info_list")
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError("list stock info", err)
	}
	defer rows.Close()

	stocks := []market.StockInfo{}
	for rows.Next() {
		s, err := scanStockInfo(rows, "list")
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError("iterate stock info", err)
	}

	return &market.StockListResult{
		Stocks:     stocks,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// stockListWhere builds the WHERE clause with positional args
func stockListWhere(filter market.StockListFilter) (string, []any) {
	whereClauses := []string{}
	args := []any{}

	if filter.Exchange != "" {
		args = append(args, filter.Exchange)
		whereClauses = append(whereClauses, fmt.Sprintf("UPPER(exchange) = $%d", len(args)))
	}
	if filter.Country != "" {
		args = append(args, filter.Country)
		whereClauses = append(whereClauses, fmt.Sprintf("LOWER(country) = LOWER($%d)", len(args)))
	}
	// 종목명 또는 티커 검색 (부분 일치)
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		whereClauses = append(whereClauses, fmt.Sprintf("(LOWER(fullname) LIKE $%d OR LOWER(ticker) LIKE $%d)", len(args), len(args)))
	}

	if len(whereClauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(whereClauses, " AND "), args
}

// stockListOrderBy expects a normalised filter; NULL market caps sort last
func stockListOrderBy(filter market.StockListFilter) string {
	order := strings.ToUpper(filter.Order)
	if filter.Sort == "marketcap" {
		return fmt.Sprintf("ORDER BY marketcap %s NULLS LAST, ticker", order)
	}
	return fmt.Sprintf("ORDER BY %s %s", filter.Sort, order)
}

func scanStockInfo(row pgx.Row, key string) (*market.StockInfo, error) {
	var s market.StockInfo
	err := row.Scan(&s.ID, &s.Ticker, &s.FullName, &s.Exchange, &s.Country, &s.MarketCap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: stock %s", market.ErrNotFound, key)
		}
		return nil, wrapQueryError("query stock info", err)
	}
	return &s, nil
}

var _ market.StockInfoReader = (*StockInfoRepository)(nil)
