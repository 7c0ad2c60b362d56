package routes

import (
	"github.com/gorilla/mux"

	"github.com/wonny/marketlens/internal/api/handlers"
)

// RegisterScreenRoutes registers the Low-DI and period-high screens
func RegisterScreenRoutes(router *mux.Router, screenHandler *handlers.ScreenHandler) {
	api := router.PathPrefix("/api").Subrouter()

	// DI20 screen over an explicit ticker list or a market basket
	api.HandleFunc("/lowdi", screenHandler.LowDi).Methods("GET")

	// Near period-high scan: 20d, 6m, 52w, 1y, ytd, max
	api.HandleFunc("/period-high/{period}", screenHandler.PeriodHigh).Methods("GET")
}
