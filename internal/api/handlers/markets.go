package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/marketlens/internal/api/response"
	"github.com/wonny/marketlens/internal/service/screener"
)

// MarketHandler serves the market catalogue and per-market return grids
type MarketHandler struct {
	svc     *screener.Service
	catalog MarketCatalog
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(svc *screener.Service, catalog MarketCatalog) *MarketHandler {
	return &MarketHandler{svc: svc, catalog: catalog}
}

// List handles GET /api/markets
func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.catalog.List())
}

// Get handles GET /api/markets/{market}
func (h *MarketHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalog.Get(mux.Vars(r)["market"])
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, m)
}

// Stocks handles GET /api/markets/{market}/stocks: multi-horizon returns for
// every member of the basket
func (h *MarketHandler) Stocks(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalog.Get(mux.Vars(r)["market"])
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	rows, err := h.svc.Returns(r.Context(), m.Tickers)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, rows)
}
