package arb

import (
	"math"
	"strconv"
	"strings"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
)

// SpreadMatchFunc reports whether a contract describes the given team at the
// given spread. The comparator never looks at contract text any other way.
type SpreadMatchFunc func(contract collectors.Contract, team string, spread float64) bool

var (
	plusIndicators  = []string{"+", "plus", "more than"}
	minusIndicators = []string{"-", "minus", "less than"}
)

// CandidateContracts returns contracts whose title or subtitle mentions both
// teams of the match. Matches with a blank team name have no candidates.
func CandidateContracts(match collectors.Match, contracts []collectors.Contract) []collectors.Contract {
	home := normalize(match.HomeTeam)
	away := normalize(match.AwayTeam)
	if home == "" || away == "" {
		return nil
	}

	var out []collectors.Contract
	for _, c := range contracts {
		title := strings.ToLower(c.Title)
		subtitle := strings.ToLower(c.Subtitle)
		if mentions(title, subtitle, home) && mentions(title, subtitle, away) {
			out = append(out, c)
		}
	}
	return out
}

// MatchesSpread is the default SpreadMatchFunc: the team must appear in the
// title or subtitle, and the subtitle must carry both a direction word for the
// spread's sign and the spread's magnitude.
func MatchesSpread(contract collectors.Contract, team string, spread float64) bool {
	name := normalize(team)
	if name == "" {
		return false
	}
	title := strings.ToLower(contract.Title)
	subtitle := strings.ToLower(contract.Subtitle)
	if !mentions(title, subtitle, name) {
		return false
	}

	if !strings.Contains(subtitle, formatMagnitude(spread)) {
		return false
	}
	indicators := minusIndicators
	if spread > 0 {
		indicators = plusIndicators
	}
	for _, ind := range indicators {
		if strings.Contains(subtitle, ind) {
			return true
		}
	}
	return false
}

// formatMagnitude renders |spread| the way lines are quoted in contract text:
// 1.5 -> "1.5", 1 -> "1.0".
func formatMagnitude(spread float64) string {
	s := strconv.FormatFloat(math.Abs(spread), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func mentions(title, subtitle, name string) bool {
	return strings.Contains(title, name) || strings.Contains(subtitle, name)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
