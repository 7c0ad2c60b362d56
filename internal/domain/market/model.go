package market

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for trading dates
const DateLayout = "2006-01-02"

// Date is an exchange-local calendar date, anchored at UTC midnight
type Date struct {
	time.Time
}

// NewDate builds a civil date
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping its wall date in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String formats as YYYY-MM-DD
func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

// AddDate shifts the date using calendar arithmetic (overflow normalised like time.AddDate)
func (d Date) AddDate(years, months, days int) Date {
	return Date{Time: d.Time.AddDate(years, months, days)}
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PriceBar is one ticker's daily session (stock_prices ⨝ stock_info)
type PriceBar struct {
	Ticker    string  `json:"ticker"`
	Date      Date    `json:"date"`
	FullName  string  `json:"fullname"`
	MarketCap float64 `json:"marketcap"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// AnnotatedBar is a PriceBar with its trailing moving average and DI (이격도).
// Both are nil while the averaging window is not yet full.
type AnnotatedBar struct {
	PriceBar
	MovingAverage  *float64 `json:"ma"`
	DeviationIndex *float64 `json:"di"`
}

// LowDiFlag marks a ticker whose latest DI sits at or below its own quantile threshold
type LowDiFlag struct {
	Ticker    string  `json:"ticker"`
	Close     float64 `json:"close"`
	DI        float64 `json:"di"`
	PValue    float64 `json:"pValue"`
	MarketCap float64 `json:"marketcap"`
	FullName  string  `json:"fullname"`
}

// PeriodHighRow is the aggregated per-ticker row produced by the store:
// latest close at-or-before the as-of watermark and the highest close within the period.
// Close/HighClose are nil when the ticker has no bars in the respective window.
type PeriodHighRow struct {
	Ticker    string
	FullName  string
	MarketCap *float64
	Date      Date
	Close     *float64
	HighDate  Date
	HighClose *float64
}

// PeriodHighRecord is a ticker trading near its period high
type PeriodHighRecord struct {
	Ticker            string   `json:"ticker"`
	FullName          string   `json:"fullname"`
	MarketCap         *float64 `json:"marketcap"`
	Date              Date     `json:"date"`
	Close             float64  `json:"close"`
	HighDate          Date     `json:"high_date"`
	HighClose         float64  `json:"high_close"`
	DistanceToHighPct float64  `json:"distanceToHighPct"`
}

// ReturnRow holds multi-horizon returns as of the latest trading date.
// A nil ratio means no reference bar exists at-or-before the horizon date.
type ReturnRow struct {
	Ticker    string   `json:"ticker"`
	FullName  string   `json:"fullname"`
	AsOf      Date     `json:"as_of"`
	CloseNow  float64  `json:"close_now"`
	MarketCap *float64 `json:"marketcap"`
	D1        *float64 `json:"d1_ret"`
	W1        *float64 `json:"w1_ret"`
	M1        *float64 `json:"m1_ret"`
	M3        *float64 `json:"m3_ret"`
	M6        *float64 `json:"m6_ret"`
}

// StockInfo maps to the stock_info table
type StockInfo struct {
	ID        int64    `json:"id"`
	Ticker    string   `json:"ticker"`
	FullName  string   `json:"fullname"`
	Exchange  string   `json:"exchange"`
	Country   string   `json:"country"`
	MarketCap *float64 `json:"marketcap"`
}

// NormalizeTickers upper-cases and trims symbols, dropping blanks and duplicates
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseTickerList splits a comma-separated ticker list
func ParseTickerList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return NormalizeTickers(strings.Split(raw, ","))
}
