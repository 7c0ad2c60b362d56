package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/service/screener"
)

var warmupMarkets []string

// warmupCmd 스크린 워밍업 1회 실행
var warmupCmd = &cobra.Command{
	Use:   "warmup",
	Short: "모든 마켓의 스크린을 1회 계산",
	Long: `Runs the same refresh the API server schedules after each market's
close. Useful to check that every market screens cleanly against the
current price store.

Examples:
  go run ./cmd/quant warmup
  go run ./cmd/quant warmup --markets kospi50,kosdaq150`,
	Args: cobra.NoArgs,
	RunE: runWarmup,
}

func init() {
	warmupCmd.Flags().StringSliceVar(&warmupMarkets, "markets", nil, "market slugs (default: all)")
}

func runWarmup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	slugs := market.Slugs
	if len(warmupMarkets) > 0 {
		slugs = make([]market.Slug, 0, len(warmupMarkets))
		for _, m := range warmupMarkets {
			slugs = append(slugs, market.Slug(m))
		}
	}

	w := screener.NewWarmer(s.svc, s.catalog, s.cfg.Warmup.Schedule, s.cfg.Warmup.Timeout)

	failed := 0
	for _, slug := range slugs {
		if err := w.WarmMarket(ctx, slug); err != nil {
			failed++
			log.Error().Err(err).Str("market", string(slug)).Msg("❌ Warmup failed")
			continue
		}
		fmt.Printf("✅ %s\n", slug)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d markets failed", failed, len(slugs))
	}
	return nil
}
