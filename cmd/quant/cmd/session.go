package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/marketlens/internal/infra/database/postgres"
	"github.com/wonny/marketlens/internal/pkg/config"
	"github.com/wonny/marketlens/internal/pkg/logger"
	"github.com/wonny/marketlens/internal/service/screener"
	"github.com/wonny/marketlens/internal/service/universe"
)

// session bundles what every subcommand needs
type session struct {
	cfg     *config.Config
	pool    *postgres.Pool
	svc     *screener.Service
	catalog *universe.Catalog
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	// CLI keeps stdout for JSON, logs go to stderr only
	if err := logger.Init(logger.Config{
		Level:       level,
		Format:      cfg.Logging.Format,
		ServiceName: "marketlens-quant",
	}); err != nil {
		return nil, err
	}

	catalog, err := universe.Load(cfg.Universe.File)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Analytics.HighTimezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Analytics.HighTimezone, err)
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	prices := postgres.NewPriceRepository(pool)
	svc := screener.NewService(
		prices,
		postgres.NewPeriodHighRepository(pool),
		postgres.NewReturnsRepository(pool),
		prices,
		screenerConfig(cfg.Analytics, loc),
	)

	return &session{cfg: cfg, pool: pool, svc: svc, catalog: catalog}, nil
}

func (s *session) Close() {
	s.pool.Close()
}

func screenerConfig(a config.AnalyticsConfig, loc *time.Location) screener.Config {
	return screener.Config{
		MAPeriod:       a.MAPeriod,
		Quantile:       a.Quantile,
		QuantileWindow: a.QuantileWindow,
		LookbackYears:  a.LookbackYears,
		WithinPct:      a.WithinPct,
		HighLocation:   loc,
		Workers:        a.Workers,
	}
}
