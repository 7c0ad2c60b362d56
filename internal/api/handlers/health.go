package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/marketlens/internal/api/response"
	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/infra/database/postgres"
)

// DBHealthChecker reports database health
type DBHealthChecker interface {
	Health(ctx context.Context) *postgres.HealthStatus
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db        DBHealthChecker
	watermark market.WatermarkReader
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db DBHealthChecker, watermark market.WatermarkReader, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		watermark: watermark,
		startTime: time.Now(),
		version:   version,
	}
}

// SimpleHealthResponse represents a liveness response
type SimpleHealthResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReadyResponse represents a readiness check response
type ReadyResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Database  *postgres.HealthStatus `json:"database"`
	Message   string                 `json:"message,omitempty"`
}

// Health returns simple liveness check
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, SimpleHealthResponse{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now(),
	})
}

// Ready checks the database and the price watermark
// GET /health/ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	db := h.db.Health(r.Context())
	resp := ReadyResponse{
		Status:    "ready",
		Timestamp: time.Now(),
		Database:  db,
	}

	if db.Status == "unhealthy" {
		resp.Status = "not_ready"
		resp.Message = "database unavailable"
		response.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	if h.watermark != nil {
		latest, err := h.watermark.LatestTradeDate(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("Readiness: price watermark unavailable")
			resp.Message = "price store has no trading dates"
		} else {
			db.LatestTrade = latest.String()
		}
	}

	response.OK(w, resp)
}
