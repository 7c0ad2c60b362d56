package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	returnsMarket  string
	returnsTickers string
)

// returnsCmd 수익률 조회
var returnsCmd = &cobra.Command{
	Use:   "returns",
	Short: "기간별 수익률 조회 (1D/1W/1M/3M/6M)",
	Long: `Prints trailing returns for each ticker from its latest close.

Examples:
  go run ./cmd/quant returns --market kospi50
  go run ./cmd/quant returns --tickers AAPL,NVDA`,
	Args: cobra.NoArgs,
	RunE: runReturns,
}

func init() {
	returnsCmd.Flags().StringVar(&returnsMarket, "market", "nasdaq100", "market slug")
	returnsCmd.Flags().StringVar(&returnsTickers, "tickers", "", "comma-separated tickers (overrides --market)")
}

func runReturns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	_, tickers, err := resolveTickers(s.catalog, returnsMarket, returnsTickers)
	if err != nil {
		return err
	}

	rows, err := s.svc.Returns(ctx, tickers)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, rows, colorize)
}
