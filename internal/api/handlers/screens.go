package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/marketlens/internal/api/response"
	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/service/screener"
)

// MarketCatalog resolves basket configuration and membership
type MarketCatalog interface {
	Get(slug string) (market.Market, error)
	List() []market.Market
}

// ScreenHandler serves the Low-DI and period-high screens
type ScreenHandler struct {
	svc     *screener.Service
	catalog MarketCatalog
}

// NewScreenHandler creates a new ScreenHandler
func NewScreenHandler(svc *screener.Service, catalog MarketCatalog) *ScreenHandler {
	return &ScreenHandler{svc: svc, catalog: catalog}
}

// LowDi handles GET /api/lowdi?date=YYYY-MM-DD&tickers=A,B&market=nasdaq100
func (h *ScreenHandler) LowDi(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.lowDi(w, r, q.Get("market"), q.Get("tickers"), q.Get("date"))
}

// MarketLowDi handles GET /api/markets/{market}/lowdi?date=YYYY-MM-DD
func (h *ScreenHandler) MarketLowDi(w http.ResponseWriter, r *http.Request) {
	h.lowDi(w, r, mux.Vars(r)["market"], "", r.URL.Query().Get("date"))
}

func (h *ScreenHandler) lowDi(w http.ResponseWriter, r *http.Request, slug, rawTickers, rawDate string) {
	m, tickers, err := h.resolveUniverse(slug, rawTickers)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	var asOf market.Date
	if rawDate != "" {
		if asOf, err = market.ParseDate(rawDate); err != nil {
			response.FromError(w, r, err)
			return
		}
	} else {
		loc, err := m.Location()
		if err != nil {
			response.FromError(w, r, err)
			return
		}
		if asOf, err = h.svc.LatestTradeDate(r.Context(), loc); err != nil {
			response.FromError(w, r, err)
			return
		}
	}

	flags, err := h.svc.CachedLowDi(r.Context(), screener.LowDiQuery{AsOf: asOf, Tickers: tickers})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, flags)
}

// PeriodHigh handles GET /api/period-high/{period}?tickers=&market=&within=
func (h *ScreenHandler) PeriodHigh(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.periodHigh(w, r, q.Get("market"), q.Get("tickers"))
}

// MarketPeriodHigh handles GET /api/markets/{market}/period-high/{period}?within=
func (h *ScreenHandler) MarketPeriodHigh(w http.ResponseWriter, r *http.Request) {
	h.periodHigh(w, r, mux.Vars(r)["market"], "")
}

func (h *ScreenHandler) periodHigh(w http.ResponseWriter, r *http.Request, slug, rawTickers string) {
	period := mux.Vars(r)["period"]

	m, tickers, err := h.resolveUniverse(slug, rawTickers)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	within, err := parseWithin(r.URL.Query().Get("within"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	// explicit ticker lists without a market keep the configured timezone
	var loc *time.Location
	if slug != "" {
		if loc, err = m.Location(); err != nil {
			response.FromError(w, r, err)
			return
		}
	}

	records, err := h.svc.CachedPeriodHigh(r.Context(), screener.PeriodHighQuery{
		Period:    period,
		Tickers:   tickers,
		WithinPct: within,
		Location:  loc,
	})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, records)
}

// resolveUniverse picks explicit tickers when given, otherwise the market's
// membership; the market defaults to nasdaq100.
func (h *ScreenHandler) resolveUniverse(slug, rawTickers string) (market.Market, []string, error) {
	if slug == "" {
		slug = string(market.SlugNasdaq100)
	}
	m, err := h.catalog.Get(slug)
	if err != nil {
		return market.Market{}, nil, err
	}

	if strings.TrimSpace(rawTickers) != "" {
		tickers := market.ParseTickerList(rawTickers)
		if len(tickers) == 0 {
			return market.Market{}, nil, fmt.Errorf("%w: %q", market.ErrInvalidTickerSet, rawTickers)
		}
		return m, tickers, nil
	}
	return m, m.Tickers, nil
}

func parseWithin(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: within=%q", market.ErrInvalidParameter, raw)
	}
	return &v, nil
}
