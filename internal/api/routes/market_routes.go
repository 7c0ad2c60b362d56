package routes

import (
	"github.com/gorilla/mux"

	"github.com/wonny/marketlens/internal/api/handlers"
)

// RegisterMarketRoutes registers market catalogue and market-scoped screens
func RegisterMarketRoutes(
	router *mux.Router,
	marketHandler *handlers.MarketHandler,
	screenHandler *handlers.ScreenHandler,
) {
	markets := router.PathPrefix("/api/markets").Subrouter()

	markets.HandleFunc("", marketHandler.List).Methods("GET")
	markets.HandleFunc("/{market}", marketHandler.Get).Methods("GET")
	markets.HandleFunc("/{market}/stocks", marketHandler.Stocks).Methods("GET")
	markets.HandleFunc("/{market}/lowdi", screenHandler.MarketLowDi).Methods("GET")
	markets.HandleFunc("/{market}/period-high/{period}", screenHandler.MarketPeriodHigh).Methods("GET")
}
