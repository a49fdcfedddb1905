package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/kafka"
	"github.com/hetulpatel/KalshiOdds/internal/logging"
	"github.com/hetulpatel/KalshiOdds/internal/models"
	sqlstore "github.com/hetulpatel/KalshiOdds/internal/storage/sqlite"
	"github.com/hetulpatel/KalshiOdds/internal/workers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logging.InitFromEnv()
	defer logging.Sync()

	brokers := kafka.Brokers()
	topic := kafka.TopicFromEnv("OPPORTUNITIES_KAFKA_TOPIC", kafka.DefaultOpportunityTopic)
	group := envString("OPPORTUNITY_WORKER_GROUP", kafka.DefaultOpportunityGroup)
	workerCount := envInt("OPPORTUNITY_WORKERS", 1)
	minEdge := envFloat("OPPORTUNITY_MIN_EDGE", 0)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[opportunity-worker] wait for broker: %v", err)
	}
	cancel()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Errorf("[opportunity-worker] ensure topic warning: %v", err)
	}
	cancelEnsure()

	store, err := sqlstore.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("[opportunity-worker] open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[opportunity-worker] create tables: %v", err)
	}

	logging.Infof("[opportunity-worker] consuming %s with group %s (%d workers, min edge=%.2f)", topic, group, workerCount, minEdge)
	workers.Run(ctx, brokers, topic, group, workerCount, func(ctx context.Context, ev models.OpportunityEvent) error {
		if ev.Opportunity.EdgePercentage < minEdge {
			logging.Debugf("[opportunity-worker] key=%s edge %.2f below %.2f, skipped", ev.Key, ev.Opportunity.EdgePercentage, minEdge)
			return nil
		}
		logOpportunity(ev)
		return store.InsertOpportunityEvent(ctx, ev)
	})
}

func logOpportunity(ev models.OpportunityEvent) {
	opp := ev.Opportunity
	fmt.Printf("[opportunity] run=%s key=%s match=%q book=%s market=%q odds=%d kalshi=%s price=%d edge=%.2f%%\n",
		ev.RunID, ev.Key, opp.MatchName, opp.Sportsbook, opp.SportsbookMarket, opp.SportsbookOdds, opp.KalshiContract, opp.KalshiPrice, opp.EdgePercentage)
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
