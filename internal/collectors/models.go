package collectors

import (
	"context"
	"time"
)

// Source identifies where a batch of records came from.
type Source string

const (
	SourceKalshi         Source = "kalshi"
	SourceSportsGameOdds Source = "SportsGameOdds"
)

// MarketTypeSpread is the only market type the comparator evaluates.
const MarketTypeSpread = "spread"

// FetchOptions control how many pages/items a collector should fetch per run.
type FetchOptions struct {
	Pages    int
	PageSize int
}

// SportsbookCollector is implemented by per-sportsbook clients. Each returns
// matches already normalized to Match; upstream optional fields are resolved
// to defaults before they leave the collector.
type SportsbookCollector interface {
	Name() string
	FetchMatches(ctx context.Context) ([]Match, error)
}

// ContractCollector is implemented by exchange clients (Kalshi).
type ContractCollector interface {
	Name() string
	FetchContracts(ctx context.Context, opts FetchOptions) ([]Contract, error)
}

// Match is a normalized sportsbook fixture with its spread markets.
type Match struct {
	ID          string         `json:"id"`
	HomeTeam    string         `json:"home_team"`
	AwayTeam    string         `json:"away_team"`
	StartTime   time.Time      `json:"start_time"`
	Competition string         `json:"competition"`
	Markets     []SpreadMarket `json:"markets"`
}

// SpreadMarket holds both sides of a handicap market. Odds are American;
// zero means the upstream price could not be mapped.
type SpreadMarket struct {
	Type       string  `json:"type"`
	HomeSpread float64 `json:"home_spread"`
	HomeOdds   int     `json:"home_odds"`
	AwaySpread float64 `json:"away_spread"`
	AwayOdds   int     `json:"away_odds"`
}

// Contract is a normalized Kalshi market. Prices are in cents (0-100).
type Contract struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	CloseTime time.Time `json:"close_time"`
	YesBid    int       `json:"yes_bid"`
	YesAsk    int       `json:"yes_ask"`
	NoBid     int       `json:"no_bid"`
	NoAsk     int       `json:"no_ask"`
	LastPrice int       `json:"last_price"`
	Volume    int64     `json:"volume"`
}
