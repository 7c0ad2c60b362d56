package routes

import (
	"github.com/gorilla/mux"

	"github.com/wonny/marketlens/internal/api/handlers"
)

// RegisterStockRoutes registers price, returns and per-ticker routes
func RegisterStockRoutes(
	router *mux.Router,
	priceHandler *handlers.PriceHandler,
	stockHandler *handlers.StockHandler,
) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/prices", priceHandler.Prices).Methods("GET")
	api.HandleFunc("/returns", priceHandler.Returns).Methods("GET")

	api.HandleFunc("/stocks", stockHandler.List).Methods("GET")
	// id route first so "id" is never taken for a ticker
	api.HandleFunc("/stocks/id/{id:[0-9]+}", stockHandler.GetByID).Methods("GET")
	api.HandleFunc("/stocks/{ticker}", stockHandler.Get).Methods("GET")
	api.HandleFunc("/stocks/{ticker}/di", stockHandler.DeviationSeries).Methods("GET")
}
