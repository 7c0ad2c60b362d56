package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"github.com/wonny/marketlens/internal/pkg/metrics"
	"github.com/wonny/marketlens/internal/pkg/reqctx"
)

// SlowQueryThreshold marks queries logged at WARN
const SlowQueryThreshold = 500 * time.Millisecond

type queryStartKey struct{}

// QueryLogger implements pgx.QueryTracer: it times every statement, records
// the duration histogram and optionally forwards to a pgx tracelog.
type QueryLogger struct {
	logger zerolog.Logger
	next   pgx.QueryTracer
}

// NewQueryLogger creates a new query tracer; next may be nil
func NewQueryLogger(logger zerolog.Logger, next *tracelog.TraceLog) *QueryLogger {
	ql := &QueryLogger{logger: logger}
	if next != nil {
		ql.next = next
	}
	return ql
}

// TraceQueryStart is called at the beginning of Query, QueryRow, and Exec calls
func (ql *QueryLogger) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	if ql.next != nil {
		ctx = ql.next.TraceQueryStart(ctx, conn, data)
	}
	return context.WithValue(ctx, queryStartKey{}, time.Now())
}

// TraceQueryEnd is called at the end of Query, QueryRow, and Exec calls
func (ql *QueryLogger) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	if ql.next != nil {
		ql.next.TraceQueryEnd(ctx, conn, data)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		start = time.Now()
	}
	duration := time.Since(start)
	name := reqctx.QueryName(ctx)

	metrics.DBQueryDuration.WithLabelValues(name).Observe(duration.Seconds())

	var event *zerolog.Event
	switch {
	case data.Err != nil:
		event = ql.logger.Error().Err(data.Err)
	case duration > SlowQueryThreshold:
		event = ql.logger.Warn()
	default:
		event = ql.logger.Debug()
	}

	if id := reqctx.RequestID(ctx); id != "" {
		event = event.Str("request_id", id)
	}

	msg := "Query executed"
	if data.Err == nil && duration > SlowQueryThreshold {
		msg = "⚠️  Slow query detected"
	}

	event.
		Str("query", name).
		Int64("duration_ms", duration.Milliseconds()).
		Str("command_tag", data.CommandTag.String()).
		Msg(msg)
}

// PgxZerologAdapter adapts zerolog.Logger to pgx's tracelog.Logger interface
type PgxZerologAdapter struct {
	logger zerolog.Logger
}

// NewPgxZerologAdapter creates a new adapter
func NewPgxZerologAdapter(logger zerolog.Logger) *PgxZerologAdapter {
	return &PgxZerologAdapter{logger: logger}
}

// Log implements tracelog.Logger
func (l *PgxZerologAdapter) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	var event *zerolog.Event

	switch level {
	case tracelog.LogLevelTrace:
		event = l.logger.Trace()
	case tracelog.LogLevelDebug:
		event = l.logger.Debug()
	case tracelog.LogLevelInfo:
		event = l.logger.Info()
	case tracelog.LogLevelWarn:
		event = l.logger.Warn()
	case tracelog.LogLevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info()
	}

	if id := reqctx.RequestID(ctx); id != "" {
		event = event.Str("request_id", id)
	}
	event.Fields(data).Msg(msg)
}
