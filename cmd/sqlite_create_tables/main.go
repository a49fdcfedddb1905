package main

import (
	"context"
	"os"

	"github.com/hetulpatel/KalshiOdds/internal/logging"
	"github.com/hetulpatel/KalshiOdds/internal/storage/sqlite"
)

func main() {
	logging.InitFromEnv()
	store, err := sqlite.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("[sqlite] open sqlite: %v", err)
	}
	defer store.Close()

	if err := store.CreateTables(context.Background()); err != nil {
		logging.Fatalf("[sqlite] create tables: %v", err)
	}
	logging.Infof("[sqlite] tables created at %s", store.Path())
}
