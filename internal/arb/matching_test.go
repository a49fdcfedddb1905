package arb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
)

func TestCandidateContracts(t *testing.T) {
	match := collectors.Match{HomeTeam: "Arsenal", AwayTeam: "Chelsea"}
	contracts := []collectors.Contract{
		{Ticker: "BOTH-TITLE", Title: "Arsenal vs Chelsea"},
		{Ticker: "SPLIT", Title: "Will ARSENAL win?", Subtitle: "against chelsea by 1.5"},
		{Ticker: "HOME-ONLY", Title: "Arsenal vs Spurs"},
		{Ticker: "NONE", Title: "Barcelona vs Real Madrid"},
	}

	got := CandidateContracts(match, contracts)
	tickers := make([]string, 0, len(got))
	for _, c := range got {
		tickers = append(tickers, c.Ticker)
	}
	assert.Equal(t, []string{"BOTH-TITLE", "SPLIT"}, tickers)

	assert.Empty(t, CandidateContracts(collectors.Match{HomeTeam: "Team C", AwayTeam: "Team D"}, contracts))
	assert.Empty(t, CandidateContracts(collectors.Match{HomeTeam: " ", AwayTeam: "Chelsea"}, contracts))
}

func TestMatchesSpread(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		subtitle string
		team     string
		spread   float64
		want     bool
	}{
		{"minus sign", "Team A vs Team B", "Team A -1.5 goals", "Team A", -1.5, true},
		{"minus word", "Team A vs Team B", "Team A minus 1.5", "Team A", -1.5, true},
		{"less than", "Team A vs Team B", "Team A wins by less than 1.5", "Team A", -1.5, true},
		{"plus sign", "Team A vs Team B", "Team B +1.5", "Team B", 1.5, true},
		{"plus word", "", "Team B plus 0.5", "Team B", 0.5, true},
		{"more than", "Team A vs Team B", "loses by no more than 1.5", "Team B", 1.5, true},
		{"case insensitive", "TEAM A VS TEAM B", "TEAM A MINUS 1.5", "team a", -1.5, true},
		{"whole number renders with .0", "Team A vs Team B", "Team A -1.0", "Team A", -1, true},
		{"whole number without .0", "Team A vs Team B", "Team A -1 goal", "Team A", -1, false},
		{"missing magnitude", "Team A vs Team B", "Team A to win by 2+ goals", "Team A", -1.5, false},
		{"wrong direction", "Team A vs Team B", "Team B +1.5", "Team B", -1.5, false},
		{"team absent", "Team C vs Team D", "Team C -1.5", "Team A", -1.5, false},
		{"zero spread uses minus words", "Team A vs Team B", "Team A -0.0", "Team A", 0, true},
		{"blank team", "Team A vs Team B", "Team A -1.5", "", -1.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := collectors.Contract{Title: tt.title, Subtitle: tt.subtitle}
			assert.Equal(t, tt.want, MatchesSpread(c, tt.team, tt.spread))
		})
	}
}

func TestFormatMagnitude(t *testing.T) {
	assert.Equal(t, "1.5", formatMagnitude(-1.5))
	assert.Equal(t, "1.5", formatMagnitude(1.5))
	assert.Equal(t, "1.0", formatMagnitude(1))
	assert.Equal(t, "0.25", formatMagnitude(-0.25))
	assert.Equal(t, "0.0", formatMagnitude(0))
}
