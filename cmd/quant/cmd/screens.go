package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/service/screener"
)

var (
	screenMarket  string
	screenTickers string
	lowDiDate     string
	highWithin    float64
)

// lowDiCmd Low-DI 스크린
var lowDiCmd = &cobra.Command{
	Use:   "lowdi",
	Short: "Low-DI 스크린 실행",
	Long: `Flags tickers whose latest disparity index is at or below the
rolling lower quantile of its own history.

Examples:
  go run ./cmd/quant lowdi --market snp500
  go run ./cmd/quant lowdi --tickers AAPL,MSFT --date 2024-06-28`,
	Args: cobra.NoArgs,
	RunE: runLowDi,
}

// periodHighCmd 기간 고점 근접 스캔
var periodHighCmd = &cobra.Command{
	Use:   "period-high <period>",
	Short: "기간 고점 근접 종목 스캔",
	Long: `Lists tickers whose latest close is within N% of their highest close
since the period start. Period is one of YTD, Nd, Nw, Nm, Ny.

Examples:
  go run ./cmd/quant period-high 52w
  go run ./cmd/quant period-high ytd --market kospi50 --within 5`,
	Args: cobra.ExactArgs(1),
	RunE: runPeriodHigh,
}

func init() {
	for _, c := range []*cobra.Command{lowDiCmd, periodHighCmd} {
		c.Flags().StringVar(&screenMarket, "market", string(market.SlugNasdaq100), "market slug (nasdaq100, snp500, kospi50, kosdaq150)")
		c.Flags().StringVar(&screenTickers, "tickers", "", "comma-separated tickers (overrides --market)")
	}
	lowDiCmd.Flags().StringVar(&lowDiDate, "date", "", "as-of date YYYY-MM-DD (default: latest trade date)")
	periodHighCmd.Flags().Float64Var(&highWithin, "within", -1, "max distance to high in percent (default: configured value)")
}

func runLowDi(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	m, tickers, err := resolveTickers(s.catalog, screenMarket, screenTickers)
	if err != nil {
		return err
	}

	var asOf market.Date
	if lowDiDate != "" {
		if asOf, err = market.ParseDate(lowDiDate); err != nil {
			return err
		}
	} else {
		loc, err := m.Location()
		if err != nil {
			return err
		}
		if asOf, err = s.svc.LatestTradeDate(ctx, loc); err != nil {
			return err
		}
	}

	log.Debug().
		Str("market", string(m.Slug)).
		Int("tickers", len(tickers)).
		Str("as_of", asOf.String()).
		Msg("Running low DI screen")

	flags, err := s.svc.ScreenLowDi(ctx, screener.LowDiQuery{AsOf: asOf, Tickers: tickers})
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, flags, colorize)
}

func runPeriodHigh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	m, tickers, err := resolveTickers(s.catalog, screenMarket, screenTickers)
	if err != nil {
		return err
	}
	loc, err := m.Location()
	if err != nil {
		return err
	}

	q := screener.PeriodHighQuery{Period: args[0], Tickers: tickers, Location: loc}
	if cmd.Flags().Changed("within") {
		q.WithinPct = &highWithin
	}

	records, err := s.svc.ScanPeriodHigh(ctx, q)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, records, colorize)
}
