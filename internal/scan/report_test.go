package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hetulpatel/KalshiOdds/internal/models"
)

func TestFormatReportEmpty(t *testing.T) {
	assert.Equal(t, []string{"No significant opportunities found."}, FormatReport(nil))
}

func TestFormatReport(t *testing.T) {
	lines := FormatReport([]models.Opportunity{{
		MatchName:             "Team A vs Team B",
		Sportsbook:            "test_sportsbook",
		SportsbookMarket:      "Team A -1.5",
		SportsbookOdds:        -110,
		SportsbookImpliedProb: 52.38,
		KalshiContract:        "SOCCER-TEAMA-TEAMB-123",
		KalshiPrice:           45,
		KalshiImpliedProb:     45,
		EdgePercentage:        7.38,
	}})

	assert.Equal(t, []string{
		"Found 1 potential opportunities:",
		"Opportunity #1:",
		"  Match: Team A vs Team B",
		"  Sportsbook: test_sportsbook (-110, 52.38%)",
		"  Kalshi: SOCCER-TEAMA-TEAMB-123 (45, 45%)",
		"  Edge: 7.38%",
		"",
	}, lines)
}
