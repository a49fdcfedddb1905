// Package arb compares sportsbook spread prices with Kalshi contract prices
// and ranks the divergences.
package arb

import (
	"fmt"
	"math"
	"sort"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/models"
	"github.com/hetulpatel/KalshiOdds/internal/odds"
)

// DefaultThreshold is the minimum edge, in percentage points, to report.
const DefaultThreshold = 5.0

type Config struct {
	// Threshold in percentage points. Zero reports every edge; negative and
	// NaN values are treated as zero. Callers wanting the usual cutoff pass
	// DefaultThreshold.
	Threshold float64
	// Match overrides the spread heuristic; nil selects MatchesSpread.
	Match SpreadMatchFunc
}

// Comparator holds only immutable settings and is safe for concurrent use.
type Comparator struct {
	threshold float64
	match     SpreadMatchFunc
}

func NewComparator(cfg Config) *Comparator {
	threshold := cfg.Threshold
	if threshold < 0 || math.IsNaN(threshold) {
		threshold = 0
	}
	match := cfg.Match
	if match == nil {
		match = MatchesSpread
	}
	return &Comparator{threshold: threshold, match: match}
}

func (c *Comparator) Threshold() float64 {
	return c.threshold
}

type side struct {
	team   string
	spread float64
	odds   int
}

// FindOpportunities evaluates every spread market of every match against the
// contracts that mention both teams. Sportsbooks are visited in name order and
// matches in slice order; the result is stably sorted by edge, highest first,
// so equal edges keep that visiting order.
func (c *Comparator) FindOpportunities(perBook map[string][]collectors.Match, contracts []collectors.Contract) []models.Opportunity {
	books := make([]string, 0, len(perBook))
	for name := range perBook {
		books = append(books, name)
	}
	sort.Strings(books)

	opportunities := []models.Opportunity{}
	for _, book := range books {
		for _, match := range perBook[book] {
			candidates := CandidateContracts(match, contracts)
			if len(candidates) == 0 {
				continue
			}
			for _, market := range match.Markets {
				if market.Type != collectors.MarketTypeSpread {
					continue
				}
				home := side{team: match.HomeTeam, spread: market.HomeSpread, odds: market.HomeOdds}
				away := side{team: match.AwayTeam, spread: market.AwaySpread, odds: market.AwayOdds}
				opportunities = append(opportunities, c.compareSide(book, match, home, candidates)...)
				opportunities = append(opportunities, c.compareSide(book, match, away, candidates)...)
			}
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].EdgePercentage > opportunities[j].EdgePercentage
	})
	return opportunities
}

func (c *Comparator) compareSide(book string, match collectors.Match, s side, candidates []collectors.Contract) []models.Opportunity {
	// Zero odds carry no price information.
	sbProb, err := odds.AmericanToProbability(s.odds)
	if err != nil {
		return nil
	}

	var out []models.Opportunity
	for _, contract := range candidates {
		if contract.YesAsk < 0 || contract.YesAsk > 100 {
			continue
		}
		if !c.match(contract, s.team, s.spread) {
			continue
		}
		kalshiProb := odds.KalshiPriceToProbability(contract.YesAsk)
		edge := math.Abs(sbProb - kalshiProb)
		// The reported edge is rounded; it must clear the threshold too.
		if edge < c.threshold || odds.Round2(edge) < c.threshold {
			continue
		}
		out = append(out, models.Opportunity{
			MatchName:             fmt.Sprintf("%s vs %s", match.HomeTeam, match.AwayTeam),
			Sportsbook:            book,
			SportsbookMarket:      fmt.Sprintf("%s %+g", s.team, s.spread),
			SportsbookOdds:        s.odds,
			SportsbookImpliedProb: odds.Round2(sbProb),
			KalshiContract:        contract.Ticker,
			KalshiPrice:           contract.YesAsk,
			KalshiImpliedProb:     odds.Round2(kalshiProb),
			EdgePercentage:        odds.Round2(edge),
		})
	}
	return out
}
