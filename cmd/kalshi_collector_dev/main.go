package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/kalshi"
	"github.com/hetulpatel/KalshiOdds/internal/logging"
)

// Prints one batch of normalized contracts as JSON.
func main() {
	ctx := context.Background()
	logging.InitFromEnv()

	collector := kalshi.NewClient(kalshi.Config{
		BaseURL:      os.Getenv("KALSHI_BASE_URL"),
		APIKey:       os.Getenv("KALSHI_API_KEY"),
		SeriesTicker: os.Getenv("KALSHI_SERIES_TICKER"),
	})
	opts := collectors.FetchOptions{
		Pages:    envInt("KALSHI_PAGES", 1),
		PageSize: envInt("KALSHI_PAGE_SIZE", 20),
	}

	collectors.RunLoop(ctx, collector.Name(), 0, func(ctx context.Context) error {
		contracts, err := collector.FetchContracts(ctx, opts)
		if err != nil {
			return err
		}
		payload, err := json.MarshalIndent(contracts, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(payload))
		return nil
	})
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
