package screener

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wonny/marketlens/internal/domain/market"
)

// WarmupPeriod is the period-high window precomputed after each close
const WarmupPeriod = "52w"

// MarketCatalog resolves basket configuration
type MarketCatalog interface {
	Get(slug string) (market.Market, error)
}

// Warmer recomputes each market's screens into the result cache after the
// market's local close, so the first dashboard hit of the day is served warm.
type Warmer struct {
	svc      *Service
	catalog  MarketCatalog
	cron     *cron.Cron
	schedule string
	timeout  time.Duration
}

// NewWarmer creates a warmer; schedule is a 5-field cron expression evaluated
// in each market's own timezone (e.g. "30 16 * * 1-5").
func NewWarmer(svc *Service, catalog MarketCatalog, schedule string, timeout time.Duration) *Warmer {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Warmer{
		svc:      svc,
		catalog:  catalog,
		cron:     cron.New(cron.WithLogger(cronLogger{logger: log.Logger})),
		schedule: schedule,
		timeout:  timeout,
	}
}

// RegisterAll registers one job per market
func (w *Warmer) RegisterAll() error {
	for _, slug := range market.Slugs {
		m, err := w.catalog.Get(string(slug))
		if err != nil {
			return err
		}

		cronSpec := fmt.Sprintf("CRON_TZ=%s %s", m.Timezone, w.schedule)
		if _, err := w.cron.AddFunc(cronSpec, func() { _ = w.WarmMarket(context.Background(), m.Slug) }); err != nil {
			return fmt.Errorf("register warmup for %s: %w", slug, err)
		}

		log.Info().
			Str("market", string(slug)).
			Str("schedule", cronSpec).
			Msg("Screen warmup scheduled")
	}
	return nil
}

// Start starts the cron scheduler
func (w *Warmer) Start() {
	w.cron.Start()
	log.Info().Msg("✅ Screen warmup scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (w *Warmer) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Screen warmup scheduler stopped")
}

// WarmMarket refreshes the Low-DI and 52w near-high screens for one market
func (w *Warmer) WarmMarket(ctx context.Context, slug market.Slug) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	m, err := w.catalog.Get(string(slug))
	if err != nil {
		return err
	}
	loc, err := m.Location()
	if err != nil {
		return err
	}

	start := time.Now()

	asOf, err := w.svc.LatestTradeDate(ctx, loc)
	if err != nil {
		log.Error().Err(err).Str("market", string(slug)).Msg("Warmup: failed to resolve as-of date")
		return err
	}

	flags, err := w.svc.RefreshLowDi(ctx, LowDiQuery{AsOf: asOf, Tickers: m.Tickers})
	if err != nil {
		log.Error().Err(err).Str("market", string(slug)).Msg("Warmup: low DI screen failed")
		return err
	}

	highs, err := w.svc.RefreshPeriodHigh(ctx, PeriodHighQuery{
		Period:   WarmupPeriod,
		Tickers:  m.Tickers,
		Location: loc,
	})
	if err != nil {
		log.Error().Err(err).Str("market", string(slug)).Msg("Warmup: period high scan failed")
		return err
	}

	if w.svc.cache != nil {
		w.svc.cache.Purge()
	}

	log.Info().
		Str("market", string(slug)).
		Str("as_of", asOf.String()).
		Int("low_di", len(flags)).
		Int("near_high", len(highs)).
		Dur("elapsed", time.Since(start)).
		Msg("Screens warmed")

	return nil
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
