package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog/log"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/pkg/config"
	applogger "github.com/wonny/marketlens/internal/pkg/logger"
)

// Pool wraps pgxpool.Pool
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a PostgreSQL connection pool, retrying the initial ping with
// exponential backoff. A database that never comes up yields ErrDataSourceUnavailable.
func NewPool(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	log.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Uint16("port", poolConfig.ConnConfig.Port).
		Str("database", poolConfig.ConnConfig.Database).
		Str("user", poolConfig.ConnConfig.User).
		Msg("Connecting to PostgreSQL...")

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	// query.log via pgx tracer (file logging only)
	if cfg.Logging.FileEnabled {
		queryLogger := applogger.NewQueryLogger(
			cfg.Logging.FilePath,
			cfg.Logging.RotationSize,
			cfg.Logging.RetentionDays,
		)
		poolConfig.ConnConfig.Tracer = NewQueryLogger(queryLogger, &tracelog.TraceLog{
			Logger:   NewPgxZerologAdapter(queryLogger),
			LogLevel: traceLevel(cfg.Logging.Level),
		})
	} else {
		poolConfig.ConnConfig.Tracer = NewQueryLogger(log.Logger, nil)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create connection pool: %v", market.ErrDataSourceUnavailable, err)
	}

	retries := cfg.Database.ConnectRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries)),
		ctx,
	)

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := pool.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("PostgreSQL ping failed")
			return err
		}
		return nil
	}, policy)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to ping database after %d attempts: %v", market.ErrDataSourceUnavailable, attempt, err)
	}

	log.Info().Msg("✅ PostgreSQL connected successfully")

	if err := checkSchema(ctx, pool); err != nil {
		log.Warn().Err(err).Msg("Schema check failed, but continuing...")
	}

	return &Pool{Pool: pool}, nil
}

// checkSchema warns when the price tables are not visible to this user
func checkSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range []string{"stock_info", "stock_prices"} {
		var exists bool
		err := pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if !exists {
			log.Warn().
				Str("table", table).
				Msg("⚠️  Table does not exist or is not visible")
		}
	}
	return nil
}

func traceLevel(level string) tracelog.LogLevel {
	switch level {
	case "info":
		return tracelog.LogLevelInfo
	case "warn":
		return tracelog.LogLevelWarn
	case "error":
		return tracelog.LogLevelError
	default:
		return tracelog.LogLevelDebug
	}
}

// Close closes the connection pool
func (p *Pool) Close() {
	log.Info().Msg("Closing PostgreSQL connection pool...")
	p.Pool.Close()
}
