package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/marketlens/internal/api/response"
	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/service/screener"
)

// StockHandler serves per-ticker metadata and DI series
type StockHandler struct {
	info market.StockInfoReader
	svc  *screener.Service
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(info market.StockInfoReader, svc *screener.Service) *StockHandler {
	return &StockHandler{info: info, svc: svc}
}

// List handles GET /api/stocks?exchange=&country=&search=&sort=&order=&page=&limit=
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := market.StockListFilter{
		Exchange: q.Get("exchange"),
		Country:  q.Get("country"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
	}
	// malformed page/limit fall back to defaults
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = l
	}

	if err := filter.Normalize(); err != nil {
		response.FromError(w, r, err)
		return
	}

	result, err := h.info.List(r.Context(), filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, result)
}

// Get handles GET /api/stocks/{ticker}
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	stock, err := h.info.GetByTicker(r.Context(), mux.Vars(r)["ticker"])
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, stock)
}

// GetByID handles GET /api/stocks/id/{id}
func (h *StockHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.FromError(w, r, fmt.Errorf("%w: id=%q", market.ErrInvalidParameter, raw))
		return
	}

	stock, err := h.info.GetByID(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, stock)
}

// DeviationSeries handles GET /api/stocks/{ticker}/di?start=&end=
// end defaults to the latest trading date, start to one year before end.
func (h *StockHandler) DeviationSeries(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]
	q := r.URL.Query()

	var (
		end market.Date
		err error
	)
	if raw := q.Get("end"); raw != "" {
		end, err = market.ParseDate(raw)
	} else {
		end, err = h.svc.LatestTradeDate(r.Context(), nil)
	}
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	start := end.AddDate(-1, 0, 0)
	if raw := q.Get("start"); raw != "" {
		if start, err = market.ParseDate(raw); err != nil {
			response.FromError(w, r, err)
			return
		}
	}

	bars, err := h.svc.DeviationSeries(r.Context(), ticker, start, end)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, bars)
}
