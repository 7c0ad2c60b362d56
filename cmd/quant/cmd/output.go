package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/wonny/marketlens/internal/domain/market"
)

func writeJSON(w io.Writer, v any, color bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	out := pretty.Pretty(data)
	if color {
		out = pretty.Color(out, nil)
	}
	_, err = w.Write(out)
	return err
}

type marketLookup interface {
	Get(slug string) (market.Market, error)
}

// resolveTickers prefers --tickers over the market's membership
func resolveTickers(c marketLookup, slug, rawTickers string) (market.Market, []string, error) {
	m, err := c.Get(slug)
	if err != nil {
		return market.Market{}, nil, err
	}
	if strings.TrimSpace(rawTickers) == "" {
		return m, m.Tickers, nil
	}
	tickers := market.ParseTickerList(rawTickers)
	if len(tickers) == 0 {
		return market.Market{}, nil, fmt.Errorf("%w: %q", market.ErrInvalidTickerSet, rawTickers)
	}
	return m, tickers, nil
}
