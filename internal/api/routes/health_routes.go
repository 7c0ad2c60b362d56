package routes

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/marketlens/internal/api/handlers"
)

// RegisterHealthRoutes registers liveness, readiness and the metrics scrape endpoint
func RegisterHealthRoutes(router *mux.Router, healthHandler *handlers.HealthHandler) {
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
