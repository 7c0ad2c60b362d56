package market

import (
	"fmt"
	"strings"
)

// StockListFilter represents filter options for listing stock_info rows
type StockListFilter struct {
	Exchange string // exact match, case-insensitive
	Country  string
	Search   string // 종목명 또는 티커 부분 일치
	Sort     string // ticker, fullname, marketcap (default: ticker)
	Order    string // asc, desc (default: asc)
	Page     int    // 1부터 시작
	Limit    int    // 기본 20, 최대 100
}

// StockListResult is one page of stock_info rows
type StockListResult struct {
	Stocks     []StockInfo `json:"stocks"`
	TotalCount int         `json:"totalCount"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
}

var stockSortColumns = map[string]bool{
	"ticker":    true,
	"fullname":  true,
	"marketcap": true,
}

// Normalize fills defaults and validates sort/order.
// Sort and Order are interpolated into SQL, so only whitelisted values pass.
func (f *StockListFilter) Normalize() error {
	f.Exchange = strings.ToUpper(strings.TrimSpace(f.Exchange))
	f.Country = strings.TrimSpace(f.Country)
	f.Search = strings.TrimSpace(f.Search)

	f.Sort = strings.ToLower(strings.TrimSpace(f.Sort))
	if f.Sort == "" {
		f.Sort = "ticker"
	}
	if !stockSortColumns[f.Sort] {
		return fmt.Errorf("%w: sort must be one of ticker, fullname, marketcap", ErrInvalidParameter)
	}

	f.Order = strings.ToLower(strings.TrimSpace(f.Order))
	if f.Order == "" {
		f.Order = "asc"
	}
	if f.Order != "asc" && f.Order != "desc" {
		return fmt.Errorf("%w: order must be asc or desc", ErrInvalidParameter)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return nil
}

// Offset returns the row offset of the current page
func (f StockListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
