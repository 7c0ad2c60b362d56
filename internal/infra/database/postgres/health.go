package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/marketlens/internal/pkg/metrics"
)

// poolHeadroom is how many free connections a healthy pool keeps
const poolHeadroom = 2

// PoolUsage is a snapshot of pgxpool connection counts
type PoolUsage struct {
	Acquired int32 `json:"acquired"`
	Idle     int32 `json:"idle"`
	Total    int32 `json:"total"`
	Max      int32 `json:"max"`
}

// HealthStatus is the database section of /health/ready.
// LatestTrade is the stock_prices watermark, filled by the readiness check.
type HealthStatus struct {
	Status      string    `json:"status"` // healthy, degraded, unhealthy
	Latency     string    `json:"latency"`
	Pool        PoolUsage `json:"pool"`
	LatestTrade string    `json:"latest_trade,omitempty"`
	CheckedAt   time.Time `json:"checked_at"`
	Error       string    `json:"error,omitempty"`
}

// Health pings the database, publishes pool gauges and grades pool pressure
func (p *Pool) Health(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{CheckedAt: start, Status: "healthy"}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := p.Ping(pingCtx); err != nil {
		status.Status = "unhealthy"
		status.Error = "ping failed"
		status.Latency = time.Since(start).String()
		return status
	}

	status.Pool = usageOf(p.Stat())
	status.Latency = time.Since(start).String()
	publishPoolUsage(status.Pool)
	status.Status, status.Error = gradePool(status.Pool)

	return status
}

func usageOf(stats *pgxpool.Stat) PoolUsage {
	return PoolUsage{
		Acquired: stats.AcquiredConns(),
		Idle:     stats.IdleConns(),
		Total:    stats.TotalConns(),
		Max:      stats.MaxConns(),
	}
}

func publishPoolUsage(u PoolUsage) {
	metrics.DBConnections.WithLabelValues("acquired").Set(float64(u.Acquired))
	metrics.DBConnections.WithLabelValues("idle").Set(float64(u.Idle))
	metrics.DBConnections.WithLabelValues("total").Set(float64(u.Total))
}

// gradePool reports degraded once fewer than poolHeadroom connections are free.
// Pools smaller than the headroom degrade only when fully acquired.
func gradePool(u PoolUsage) (string, string) {
	limit := u.Max - poolHeadroom
	if u.Max <= poolHeadroom {
		limit = u.Max
	}
	if u.Max > 0 && u.Acquired >= limit {
		return "degraded", fmt.Sprintf("connection pool nearly exhausted (%d/%d acquired)", u.Acquired, u.Max)
	}
	return "healthy", ""
}
