package scan

import (
	"fmt"
	"strconv"

	"github.com/hetulpatel/KalshiOdds/internal/logging"
	"github.com/hetulpatel/KalshiOdds/internal/models"
)

// Report logs one block per opportunity, or a single line when there are none.
func Report(opps []models.Opportunity) {
	for _, line := range FormatReport(opps) {
		logging.Infof("%s", line)
	}
}

// FormatReport renders the lines Report logs.
func FormatReport(opps []models.Opportunity) []string {
	if len(opps) == 0 {
		return []string{"No significant opportunities found."}
	}
	lines := []string{fmt.Sprintf("Found %d potential opportunities:", len(opps))}
	for i, opp := range opps {
		lines = append(lines,
			fmt.Sprintf("Opportunity #%d:", i+1),
			fmt.Sprintf("  Match: %s", opp.MatchName),
			fmt.Sprintf("  Sportsbook: %s (%d, %s%%)", opp.Sportsbook, opp.SportsbookOdds, formatProb(opp.SportsbookImpliedProb)),
			fmt.Sprintf("  Kalshi: %s (%d, %s%%)", opp.KalshiContract, opp.KalshiPrice, formatProb(opp.KalshiImpliedProb)),
			fmt.Sprintf("  Edge: %.2f%%", opp.EdgePercentage),
			"",
		)
	}
	return lines
}

func formatProb(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
