// Package main - quant CLI
// 스크린 결과를 터미널에서 조회하는 CLI 진입점
//
// 사용법:
//
//	go run ./cmd/quant lowdi --market nasdaq100
//	go run ./cmd/quant period-high 52w --within 5
package main

import (
	"os"

	"github.com/wonny/marketlens/cmd/quant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
