// Package scan runs one collect, compare and report cycle across all
// configured sportsbooks and Kalshi, and optionally loops it.
package scan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hetulpatel/KalshiOdds/internal/arb"
	"github.com/hetulpatel/KalshiOdds/internal/cache"
	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/logging"
	"github.com/hetulpatel/KalshiOdds/internal/models"
	"github.com/hetulpatel/KalshiOdds/internal/queue"
)

// Validator filters heuristic matches; *validator.Service implements it.
type Validator interface {
	Filter(ctx context.Context, opps []models.Opportunity, contracts map[string]collectors.Contract) []models.Opportunity
}

// ReportStore persists scan output; *sqlite.Store implements it.
type ReportStore interface {
	UpsertContracts(ctx context.Context, contracts []collectors.Contract) error
	InsertReport(ctx context.Context, report models.ScanReport) error
}

// Config wires the service. Only Kalshi is required; every sink is optional.
// A nil Comparator uses arb.DefaultThreshold.
type Config struct {
	Sportsbooks  []collectors.SportsbookCollector
	Kalshi       collectors.ContractCollector
	FetchOptions collectors.FetchOptions
	Comparator   *arb.Comparator

	Validator Validator
	Seen      cache.OpportunityCache
	Store     ReportStore
	Publisher queue.MessageWriter

	Now      func() time.Time
	NewRunID func() string
}

// Data is the raw input to one analysis pass, keyed by sportsbook name.
type Data struct {
	Sportsbooks map[string][]collectors.Match
	Contracts   []collectors.Contract
}

// MatchCount is the number of matches across all sportsbooks.
func (d *Data) MatchCount() int {
	n := 0
	for _, matches := range d.Sportsbooks {
		n += len(matches)
	}
	return n
}

type Service struct {
	sportsbooks []collectors.SportsbookCollector
	kalshi      collectors.ContractCollector
	fetchOpts   collectors.FetchOptions
	comparator  *arb.Comparator

	validator Validator
	seen      cache.OpportunityCache
	store     ReportStore
	publisher queue.MessageWriter

	now      func() time.Time
	newRunID func() string
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Kalshi == nil {
		return nil, fmt.Errorf("scan: kalshi collector is required")
	}
	comparator := cfg.Comparator
	if comparator == nil {
		comparator = arb.NewComparator(arb.Config{Threshold: arb.DefaultThreshold})
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newRunID := cfg.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}
	return &Service{
		sportsbooks: cfg.Sportsbooks,
		kalshi:      cfg.Kalshi,
		fetchOpts:   cfg.FetchOptions,
		comparator:  comparator,
		validator:   cfg.Validator,
		seen:        cfg.Seen,
		store:       cfg.Store,
		publisher:   cfg.Publisher,
		now:         now,
		newRunID:    newRunID,
	}, nil
}

// Collect fetches every sportsbook and Kalshi concurrently. A failing
// sportsbook is logged and left out; a Kalshi failure fails the collection.
func (s *Service) Collect(ctx context.Context) (*Data, error) {
	logging.Infof("[scan] starting data collection")
	data := &Data{Sportsbooks: make(map[string][]collectors.Match, len(s.sportsbooks))}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, sb := range s.sportsbooks {
		sb := sb
		g.Go(func() error {
			matches, err := sb.FetchMatches(gctx)
			if err != nil {
				if gctx.Err() == nil {
					logging.Errorf("[scan] sportsbook %s: %v", sb.Name(), err)
				}
				return nil
			}
			warnUnmirrored(sb.Name(), matches)
			mu.Lock()
			data.Sportsbooks[sb.Name()] = matches
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		contracts, err := s.kalshi.FetchContracts(gctx, s.fetchOpts)
		if err != nil {
			return fmt.Errorf("collect %s contracts: %w", s.kalshi.Name(), err)
		}
		data.Contracts = contracts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Infof("[scan] data collection complete: %d Kalshi markets, %d sportsbook matches",
		len(data.Contracts), data.MatchCount())
	return data, nil
}

// Analyze runs the comparator over collected data.
func (s *Service) Analyze(data *Data) []models.Opportunity {
	logging.Infof("[scan] starting data analysis")
	if data == nil {
		return []models.Opportunity{}
	}
	if logging.Enabled(logging.LevelDebug) {
		for _, matches := range data.Sportsbooks {
			for _, m := range matches {
				if len(arb.CandidateContracts(m, data.Contracts)) == 0 {
					logging.Debugf("[scan] no matching Kalshi markets found for %s vs %s", m.HomeTeam, m.AwayTeam)
				}
			}
		}
	}
	opps := s.comparator.FindOpportunities(data.Sportsbooks, data.Contracts)
	logging.Infof("[scan] analysis complete: %d potential opportunities", len(opps))
	return opps
}

// Run performs one full cycle: collect, analyze, validate, persist, publish
// new or improved opportunities, and log the report. Sink failures are
// returned joined alongside the report.
func (s *Service) Run(ctx context.Context) (*models.ScanReport, error) {
	started := s.now().UTC()
	runID := s.newRunID()
	logging.Infof("[scan] run %s started at %s", runID, started.Format("2006-01-02 15:04:05"))

	data, err := s.Collect(ctx)
	if err != nil {
		return nil, err
	}

	opps := s.Analyze(data)
	if s.validator != nil && len(opps) > 0 {
		opps = s.validator.Filter(ctx, opps, indexContracts(data.Contracts))
	}

	report := models.ScanReport{
		RunID:         runID,
		StartedAt:     started,
		FinishedAt:    s.now().UTC(),
		Threshold:     s.comparator.Threshold(),
		MatchCount:    data.MatchCount(),
		ContractCount: len(data.Contracts),
		Opportunities: opps,
	}

	var errs []error
	if s.store != nil {
		if err := s.store.UpsertContracts(ctx, data.Contracts); err != nil {
			errs = append(errs, fmt.Errorf("store contracts: %w", err))
		}
		if err := s.store.InsertReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("store report: %w", err))
		}
	}
	if err := s.publishFresh(ctx, report); err != nil {
		errs = append(errs, err)
	}

	Report(report.Opportunities)
	return &report, errors.Join(errs...)
}

// Loop calls Run every interval until ctx is done; interval <= 0 runs once.
func (s *Service) Loop(ctx context.Context, interval time.Duration) {
	collectors.RunLoop(ctx, "scan", interval, func(ctx context.Context) error {
		_, err := s.Run(ctx)
		return err
	})
}

// publishFresh publishes opportunities not already reported at the same or a
// better edge, then records them in the seen cache.
func (s *Service) publishFresh(ctx context.Context, report models.ScanReport) error {
	if s.publisher == nil && s.seen == nil {
		return nil
	}

	fresh := make([]models.Opportunity, 0, len(report.Opportunities))
	for _, opp := range report.Opportunities {
		if s.alreadyReported(ctx, opp) {
			continue
		}
		fresh = append(fresh, opp)
	}
	if len(fresh) == 0 {
		logging.Debugf("[scan] nothing new to publish")
		return nil
	}

	out := report
	out.Opportunities = fresh
	if s.publisher != nil {
		if err := queue.PublishOpportunities(ctx, s.publisher, out); err != nil {
			return fmt.Errorf("publish opportunities: %w", err)
		}
		logging.Infof("[scan] published %d new opportunities", len(fresh))
	}

	if s.seen != nil {
		for _, opp := range fresh {
			rec := cache.OpportunityRecord{
				EdgePercentage: opp.EdgePercentage,
				SportsbookOdds: opp.SportsbookOdds,
				KalshiPrice:    opp.KalshiPrice,
				RunID:          report.RunID,
				UpdatedAt:      report.FinishedAt,
			}
			if err := s.seen.Set(ctx, opp.Key(), rec); err != nil {
				logging.Warnf("[scan] seen cache set: %v", err)
			}
		}
	}
	return nil
}

func (s *Service) alreadyReported(ctx context.Context, opp models.Opportunity) bool {
	if s.seen == nil {
		return false
	}
	rec, ok, err := s.seen.Get(ctx, opp.Key())
	if err != nil {
		logging.Warnf("[scan] seen cache get: %v", err)
		return false
	}
	return ok && rec.EdgePercentage >= opp.EdgePercentage
}

func indexContracts(contracts []collectors.Contract) map[string]collectors.Contract {
	out := make(map[string]collectors.Contract, len(contracts))
	for _, c := range contracts {
		out[c.Ticker] = c
	}
	return out
}

// warnUnmirrored flags markets whose away line is not the negated home line.
// Both sides are still evaluated independently.
func warnUnmirrored(book string, matches []collectors.Match) {
	for _, m := range matches {
		for _, mk := range m.Markets {
			if math.Abs(mk.HomeSpread+mk.AwaySpread) > 1e-9 {
				logging.Debugf("[scan] %s %s vs %s: away spread %+g does not mirror home %+g",
					book, m.HomeTeam, m.AwayTeam, mk.AwaySpread, mk.HomeSpread)
			}
		}
	}
}
