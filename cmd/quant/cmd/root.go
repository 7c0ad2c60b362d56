// Package cmd - quant CLI commands
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// 공통 플래그
	cfgFile  string
	verbose  bool
	colorize bool
)

// rootCmd 루트 커맨드
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "MarketLens - screen CLI",
	Long: `MarketLens - screen CLI

Usage:
    go run ./cmd/quant [command]

Commands:
    lowdi         - Low-DI screen for a market or ticker list
    period-high   - Tickers within N% of their period high
    returns       - Trailing returns (1D/1W/1M/3M/6M)
    warmup        - Refresh the screen cache once for every market
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute 루트 커맨드 실행 (Ctrl+C 시 진행 중인 쿼리 취소)
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&colorize, "color", false, "colorize JSON output")

	// Add subcommands
	rootCmd.AddCommand(lowDiCmd)
	rootCmd.AddCommand(periodHighCmd)
	rootCmd.AddCommand(returnsCmd)
	rootCmd.AddCommand(warmupCmd)
}

// initConfig reads in config file and ENV variables if set
func initConfig() error {
	files := []string{}
	if cfgFile != "" {
		files = append(files, cfgFile)
	}

	if err := godotenv.Load(files...); err != nil {
		if cfgFile != "" {
			return fmt.Errorf("load %s: %w", cfgFile, err)
		}
		// .env 파일이 없어도 계속 진행 (환경변수로 설정 가능)
		if verbose {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	return nil
}
