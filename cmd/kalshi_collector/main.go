package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/kalshi"
	"github.com/hetulpatel/KalshiOdds/internal/logging"
	sqlstore "github.com/hetulpatel/KalshiOdds/internal/storage/sqlite"
)

// Keeps the contracts table fresh independently of scans.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logging.InitFromEnv()

	store, err := sqlstore.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("[kalshi] open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[kalshi] create tables: %v", err)
	}

	collector := newCollector()
	opts := collectors.FetchOptions{
		Pages:    envInt("KALSHI_PAGES", 5),
		PageSize: envInt("KALSHI_PAGE_SIZE", 200),
	}
	interval := time.Duration(envInt("KALSHI_INTERVAL_SECONDS", 60)) * time.Second

	collectors.RunLoop(ctx, collector.Name(), interval, func(ctx context.Context) error {
		contracts, err := collector.FetchContracts(ctx, opts)
		if err != nil {
			return err
		}
		logging.Infof("[kalshi] fetched %d contracts", len(contracts))
		return store.UpsertContracts(ctx, contracts)
	})
}

func newCollector() *kalshi.Client {
	return kalshi.NewClient(kalshi.Config{
		BaseURL:      os.Getenv("KALSHI_BASE_URL"),
		APIKey:       os.Getenv("KALSHI_API_KEY"),
		SeriesTicker: os.Getenv("KALSHI_SERIES_TICKER"),
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
