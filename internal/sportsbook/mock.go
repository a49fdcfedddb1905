package sportsbook

import (
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
)

// MockMatches returns three fixed fixtures with start times relative to now.
// Used by sportsbooks configured with mock: true.
func MockMatches(now time.Time) []collectors.Match {
	day := 24 * time.Hour
	return []collectors.Match{
		{
			ID:          "match_1",
			HomeTeam:    "Arsenal",
			AwayTeam:    "Chelsea",
			StartTime:   now.Add(2 * day),
			Competition: "Premier League",
			Markets: []collectors.SpreadMarket{
				{Type: collectors.MarketTypeSpread, HomeSpread: -0.5, HomeOdds: -110, AwaySpread: 0.5, AwayOdds: -110},
			},
		},
		{
			ID:          "match_2",
			HomeTeam:    "Barcelona",
			AwayTeam:    "Real Madrid",
			StartTime:   now.Add(3 * day),
			Competition: "La Liga",
			Markets: []collectors.SpreadMarket{
				{Type: collectors.MarketTypeSpread, HomeSpread: -1.0, HomeOdds: -115, AwaySpread: 1.0, AwayOdds: -105},
			},
		},
		{
			ID:          "match_3",
			HomeTeam:    "Bayern Munich",
			AwayTeam:    "Borussia Dortmund",
			StartTime:   now.Add(day),
			Competition: "Bundesliga",
			Markets: []collectors.SpreadMarket{
				{Type: collectors.MarketTypeSpread, HomeSpread: -1.5, HomeOdds: -105, AwaySpread: 1.5, AwayOdds: -115},
			},
		},
	}
}
