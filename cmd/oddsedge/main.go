package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/arb"
	"github.com/hetulpatel/KalshiOdds/internal/cache"
	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/config"
	"github.com/hetulpatel/KalshiOdds/internal/kafka"
	"github.com/hetulpatel/KalshiOdds/internal/kalshi"
	"github.com/hetulpatel/KalshiOdds/internal/llm"
	"github.com/hetulpatel/KalshiOdds/internal/logging"
	"github.com/hetulpatel/KalshiOdds/internal/scan"
	"github.com/hetulpatel/KalshiOdds/internal/sportsbook"
	sqlstore "github.com/hetulpatel/KalshiOdds/internal/storage/sqlite"
	"github.com/hetulpatel/KalshiOdds/internal/validator"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	once := flag.Bool("once", false, "run a single scan and exit")
	interval := flag.Duration("interval", 0, "time between scans (overrides analysis.interval)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.InitFromEnv()
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatalf("[oddsedge] %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatalf("[oddsedge] invalid config: %v", err)
	}
	_ = logging.Init(logging.Options{Level: cfg.Logging.Level, File: cfg.Logging.File})
	defer logging.Sync()

	logging.Infof("[oddsedge] starting Kalshi odds comparison at %s", time.Now().Format("2006-01-02 15:04:05"))

	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		logging.Fatalf("[oddsedge] %v", err)
	}
	defer cleanup()

	every := cfg.Analysis.Interval
	if *interval > 0 {
		every = *interval
	}
	if *once || every <= 0 {
		if _, err := svc.Run(ctx); err != nil {
			logging.Errorf("[oddsedge] scan failed: %v", err)
			logging.Sync()
			os.Exit(1)
		}
		return
	}

	logging.Infof("[oddsedge] scanning every %s", every)
	svc.Loop(ctx, every)
}

func buildService(ctx context.Context, cfg *config.Config) (*scan.Service, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	books := make([]collectors.SportsbookCollector, 0, len(cfg.APIs.Sportsbooks))
	for _, sb := range cfg.APIs.Sportsbooks {
		c, err := sportsbook.New(sb)
		if err != nil {
			return nil, cleanup, err
		}
		books = append(books, c)
	}

	kcfg := cfg.APIs.Kalshi
	scanCfg := scan.Config{
		Sportsbooks: books,
		Kalshi: kalshi.NewClient(kalshi.Config{
			BaseURL:      kcfg.BaseURL,
			APIKey:       kcfg.APIKey,
			SeriesTicker: kcfg.SeriesTicker,
			Timeout:      kcfg.Timeout,
		}),
		FetchOptions: collectors.FetchOptions{Pages: kcfg.Pages, PageSize: kcfg.PageSize},
		Comparator:   arb.NewComparator(arb.Config{Threshold: cfg.Analysis.ThresholdPercentage}),
	}

	if path := cfg.Storage.SQLitePath; path != "" {
		store, err := sqlstore.Open(path)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { store.Close() })
		if err := store.CreateTables(ctx); err != nil {
			return nil, cleanup, err
		}
		scanCfg.Store = store
		logging.Infof("[oddsedge] persisting scans to %s", store.Path())
	}

	redisOpts := cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
		Prefix:   cfg.Redis.Prefix,
	}
	if cfg.Redis.Addr != "" {
		seen, err := cache.NewRedisOpportunityCache(redisOpts)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { seen.Close() })
		scanCfg.Seen = seen
	}

	if len(cfg.Kafka.Brokers) > 0 {
		ensureCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := kafka.EnsureTopic(ensureCtx, cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
			logging.Warnf("[oddsedge] ensure topic warning: %v", err)
		}
		cancel()
		writer := kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		closers = append(closers, func() { writer.Close() })
		scanCfg.Publisher = writer
		logging.Infof("[oddsedge] publishing opportunities to %s", cfg.Kafka.Topic)
	}

	if cfg.Analysis.Validate {
		client, err := llm.New(llm.Config{
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
			JSONMode: true,
		})
		if err != nil {
			return nil, cleanup, err
		}
		vcfg := validator.Config{LLM: client}
		if cfg.Redis.Addr != "" {
			verdictOpts := redisOpts
			verdictOpts.TTL = 0
			verdictOpts.Prefix = ""
			verdicts, err := cache.NewRedisVerdictCache(verdictOpts)
			if err != nil {
				return nil, cleanup, err
			}
			closers = append(closers, func() { verdicts.Close() })
			vcfg.Cache = verdicts
		}
		v, err := validator.NewService(vcfg)
		if err != nil {
			return nil, cleanup, err
		}
		scanCfg.Validator = v
		logging.Infof("[oddsedge] validating matches with %s", client.Model())
	}

	svc, err := scan.NewService(scanCfg)
	if err != nil {
		return nil, cleanup, err
	}
	return svc, cleanup, nil
}
