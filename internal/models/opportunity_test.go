package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpportunityKey(t *testing.T) {
	base := Opportunity{
		MatchName:        "Team A vs Team B",
		Sportsbook:       "book",
		SportsbookMarket: "Team A -1.5",
		SportsbookOdds:   -110,
		KalshiContract:   "SOCCER-TEAMA",
		KalshiPrice:      45,
		EdgePercentage:   7.38,
	}

	same := base
	same.EdgePercentage = 9
	assert.Equal(t, base.Key(), same.Key(), "edge is derived and not part of the key")

	moved := base
	moved.KalshiPrice = 46
	assert.NotEqual(t, base.Key(), moved.Key())

	other := base
	other.Sportsbook = "another"
	assert.NotEqual(t, base.Key(), other.Key())
	assert.Len(t, base.Key(), 16)
}

func TestScanReportEvents(t *testing.T) {
	finished := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	report := ScanReport{
		RunID:      "run-1",
		FinishedAt: finished,
		Threshold:  5,
		Opportunities: []Opportunity{
			{MatchName: "A vs B", Sportsbook: "book", KalshiContract: "T1", EdgePercentage: 7.5},
			{MatchName: "C vs D", Sportsbook: "book", KalshiContract: "T2", EdgePercentage: 6},
		},
	}

	events := report.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "run-1", events[0].RunID)
	assert.Equal(t, finished, events[0].DetectedAt)
	assert.Equal(t, report.Opportunities[0].Key(), events[0].Key)
	assert.Equal(t, "T2", events[1].Opportunity.KalshiContract)

	assert.Empty(t, ScanReport{}.Events())
}
