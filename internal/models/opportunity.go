package models

import (
	"strconv"
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/hashutil"
)

// Opportunity is a sportsbook spread side whose implied probability differs
// from a matching Kalshi contract by at least the configured threshold.
type Opportunity struct {
	MatchName             string  `json:"match_name"`
	Sportsbook            string  `json:"sportsbook"`
	SportsbookMarket      string  `json:"sportsbook_market"`
	SportsbookOdds        int     `json:"sportsbook_odds"`
	SportsbookImpliedProb float64 `json:"sportsbook_implied_prob"`
	KalshiContract        string  `json:"kalshi_contract"`
	KalshiPrice           int     `json:"kalshi_price"`
	KalshiImpliedProb     float64 `json:"kalshi_implied_prob"`
	EdgePercentage        float64 `json:"edge_percentage"`
}

// Key identifies the same opportunity across scans. Prices are part of the key,
// so a moved line produces a new key.
func (o Opportunity) Key() string {
	return hashutil.ShortHash(
		o.Sportsbook,
		o.MatchName,
		o.SportsbookMarket,
		strconv.Itoa(o.SportsbookOdds),
		o.KalshiContract,
		strconv.Itoa(o.KalshiPrice),
	)
}

// ScanReport is the payload published to Kafka and persisted per scan.
type ScanReport struct {
	RunID         string        `json:"run_id"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Threshold     float64       `json:"threshold"`
	MatchCount    int           `json:"match_count"`
	ContractCount int           `json:"contract_count"`
	Opportunities []Opportunity `json:"opportunities"`
}

// OpportunityEvent is one Kafka message: a single opportunity tagged with the
// scan that produced it.
type OpportunityEvent struct {
	RunID       string      `json:"run_id"`
	Key         string      `json:"key"`
	DetectedAt  time.Time   `json:"detected_at"`
	Threshold   float64     `json:"threshold"`
	Opportunity Opportunity `json:"opportunity"`
}

// Events flattens a report into per-opportunity events.
func (r ScanReport) Events() []OpportunityEvent {
	out := make([]OpportunityEvent, 0, len(r.Opportunities))
	for _, opp := range r.Opportunities {
		out = append(out, OpportunityEvent{
			RunID:       r.RunID,
			Key:         opp.Key(),
			DetectedAt:  r.FinishedAt,
			Threshold:   r.Threshold,
			Opportunity: opp,
		})
	}
	return out
}
