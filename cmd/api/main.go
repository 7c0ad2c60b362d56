package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/marketlens/internal/api/handlers"
	"github.com/wonny/marketlens/internal/api/router"
	"github.com/wonny/marketlens/internal/infra/database/postgres"
	"github.com/wonny/marketlens/internal/pkg/config"
	"github.com/wonny/marketlens/internal/pkg/logger"
	"github.com/wonny/marketlens/internal/service/screener"
	"github.com/wonny/marketlens/internal/service/universe"
)

const (
	serviceName    = "marketlens-api"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logger.Init(logger.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("version", serviceVersion).
		Msg("🚀 Starting MarketLens API Server...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	catalog, err := universe.Load(cfg.Universe.File)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load market universe")
	}

	// Repositories
	priceRepo := postgres.NewPriceRepository(dbPool)
	highRepo := postgres.NewPeriodHighRepository(dbPool)
	returnsRepo := postgres.NewReturnsRepository(dbPool)
	stockInfoRepo := postgres.NewStockInfoRepository(dbPool)

	highLoc, err := time.LoadLocation(cfg.Analytics.HighTimezone)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load period-high timezone")
	}

	svc := screener.NewService(priceRepo, highRepo, returnsRepo, priceRepo, screener.Config{
		MAPeriod:       cfg.Analytics.MAPeriod,
		Quantile:       cfg.Analytics.Quantile,
		QuantileWindow: cfg.Analytics.QuantileWindow,
		LookbackYears:  cfg.Analytics.LookbackYears,
		WithinPct:      cfg.Analytics.WithinPct,
		HighLocation:   highLoc,
		Workers:        cfg.Analytics.Workers,
	}).WithCache(screener.NewResultCache(cfg.Analytics.CacheTTL))

	log.Info().
		Int("ma_period", cfg.Analytics.MAPeriod).
		Float64("quantile", cfg.Analytics.Quantile).
		Int("workers", cfg.Analytics.Workers).
		Dur("cache_ttl", cfg.Analytics.CacheTTL).
		Msg("✅ Screener initialized")

	// Warm the screen cache after each market's close
	var warmer *screener.Warmer
	if cfg.Warmup.Enabled && cfg.Analytics.CacheTTL > 0 {
		warmer = screener.NewWarmer(svc, catalog, cfg.Warmup.Schedule, cfg.Warmup.Timeout)
		if err := warmer.RegisterAll(); err != nil {
			log.Fatal().Err(err).Msg("Failed to register screen warmup")
		}
		warmer.Start()
	}

	var accessLogger = log.Logger
	if cfg.Logging.FileEnabled {
		accessLogger = logger.NewAccessLogger(cfg.Logging.FilePath, cfg.Logging.RotationSize, cfg.Logging.RetentionDays)
	}

	handler := router.NewRouter(&router.Config{
		ScreenHandler:  handlers.NewScreenHandler(svc, catalog),
		MarketHandler:  handlers.NewMarketHandler(svc, catalog),
		PriceHandler:   handlers.NewPriceHandler(svc, catalog),
		StockHandler:   handlers.NewStockHandler(stockInfoRepo, svc),
		HealthHandler:  handlers.NewHealthHandler(dbPool, priceRepo, serviceVersion),
		AccessLogger:   &accessLogger,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	log.Info().Msg("✅ All routes registered (Screens, Markets, Prices, Stocks, Health)")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("address", addr).
			Msg("🎯 API Server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start API server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("🛑 Shutdown signal received, stopping server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if warmer != nil {
		warmer.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("👋 MarketLens API Server stopped")
}
