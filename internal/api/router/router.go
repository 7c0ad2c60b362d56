package router

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/wonny/marketlens/internal/api/handlers"
	"github.com/wonny/marketlens/internal/api/middleware"
	"github.com/wonny/marketlens/internal/api/response"
	"github.com/wonny/marketlens/internal/api/routes"
)

// Config holds router configuration
type Config struct {
	ScreenHandler *handlers.ScreenHandler
	MarketHandler *handlers.MarketHandler
	PriceHandler  *handlers.PriceHandler
	StockHandler  *handlers.StockHandler
	HealthHandler *handlers.HealthHandler

	AccessLogger   *zerolog.Logger
	CORSOrigins    []string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates the HTTP handler: gorilla/mux routes wrapped in the
// middleware chain (outermost first) RealIP, request id, access log,
// recoverer, request deadline, CORS, rate limit, compression.
func NewRouter(cfg *Config) http.Handler {
	r := mux.NewRouter()

	// route-aware middleware runs after matching
	r.Use(middleware.Metrics)

	routes.RegisterHealthRoutes(r, cfg.HealthHandler)
	routes.RegisterScreenRoutes(r, cfg.ScreenHandler)
	routes.RegisterMarketRoutes(r, cfg.MarketHandler, cfg.ScreenHandler)
	routes.RegisterStockRoutes(r, cfg.PriceHandler, cfg.StockHandler)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, req, http.StatusMethodNotAllowed, response.ErrCodeInvalidParameter, "method not allowed")
	})

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var h http.Handler = r
	h = gorillaHandlers.CompressHandler(h)
	h = middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)
	h = middleware.Timeout(timeout)(h)
	h = chimw.Recoverer(h)
	h = middleware.Logging(middleware.LoggingConfig{
		AccessLogger: cfg.AccessLogger,
		SkipPaths:    []string{"/health", "/metrics"},
	})(h)
	h = middleware.RequestID(h)
	h = chimw.RealIP(h)

	return h
}
