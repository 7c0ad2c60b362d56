package handlers

import (
	"fmt"
	"net/http"

	"github.com/wonny/marketlens/internal/api/response"
	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/service/screener"
)

// PriceHandler serves raw price ranges and returns
type PriceHandler struct {
	svc     *screener.Service
	catalog MarketCatalog
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(svc *screener.Service, catalog MarketCatalog) *PriceHandler {
	return &PriceHandler{svc: svc, catalog: catalog}
}

// Prices handles GET /api/prices?tickers=A,B&start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *PriceHandler) Prices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tickers := market.ParseTickerList(q.Get("tickers"))
	rawStart, rawEnd := q.Get("start"), q.Get("end")

	if len(tickers) == 0 || rawStart == "" || rawEnd == "" {
		response.BadRequest(w, r, "tickers,start,end are required")
		return
	}

	start, err := market.ParseDate(rawStart)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	end, err := market.ParseDate(rawEnd)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	series, err := h.svc.PriceRange(r.Context(), tickers, start, end)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, series)
}

// Returns handles GET /api/returns?tickers=A,B or ?market=slug
func (h *PriceHandler) Returns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	tickers := market.ParseTickerList(q.Get("tickers"))
	if len(tickers) == 0 {
		slug := q.Get("market")
		if slug == "" {
			slug = string(market.SlugNasdaq100)
		}
		m, err := h.catalog.Get(slug)
		if err != nil {
			response.FromError(w, r, fmt.Errorf("returns: %w", err))
			return
		}
		tickers = m.Tickers
	}

	rows, err := h.svc.Returns(r.Context(), tickers)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, rows)
}
