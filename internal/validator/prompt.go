package validator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/hashutil"
	"github.com/hetulpatel/KalshiOdds/internal/models"
)

type promptPayload struct {
	MatchName      string          `json:"match_name"`
	GeneratedAtUTC string          `json:"generated_at_utc"`
	Sportsbook     sportsbookSide  `json:"sportsbook"`
	Kalshi         contractPayload `json:"kalshi"`
}

type sportsbookSide struct {
	Name   string `json:"name"`
	Market string `json:"market"`
	Odds   int    `json:"american_odds"`
}

type contractPayload struct {
	Ticker         string         `json:"ticker"`
	Title          string         `json:"title"`
	Subtitle       string         `json:"subtitle,omitempty"`
	CloseTimeUTC   string         `json:"close_time_utc,omitempty"`
	OutcomeMapping outcomeMapping `json:"outcome_mapping"`
}

type outcomeMapping struct {
	Yes string `json:"yes_means"`
	No  string `json:"no_means"`
}

func buildPromptPayload(opp models.Opportunity, contract collectors.Contract) promptPayload {
	return promptPayload{
		MatchName:      opp.MatchName,
		GeneratedAtUTC: formatTime(time.Now().UTC()),
		Sportsbook: sportsbookSide{
			Name:   opp.Sportsbook,
			Market: opp.SportsbookMarket,
			Odds:   opp.SportsbookOdds,
		},
		Kalshi: contractPayload{
			Ticker:       contract.Ticker,
			Title:        truncateText(contract.Title, 500),
			Subtitle:     truncateText(contract.Subtitle, 500),
			CloseTimeUTC: formatTime(contract.CloseTime),
			OutcomeMapping: outcomeMapping{
				Yes: buildOutcomeText(contract, true),
				No:  buildOutcomeText(contract, false),
			},
		},
	}
}

func buildUserPrompt(opp models.Opportunity, contract collectors.Contract) (string, error) {
	inputJSON, err := json.MarshalIndent(buildPromptPayload(opp, contract), "", "  ")
	if err != nil {
		return "", fmt.Errorf("validator: marshal prompt input: %w", err)
	}
	return strings.Join([]string{
		"A sportsbook offers a soccer point-spread (handicap) bet and Kalshi lists a binary contract on the same match.",
		"Decide whether YES on the Kalshi contract pays out in exactly the cases where the sportsbook side wins.",
		"Pay attention to which team the contract is about, the direction and size of the margin, whether half goals or pushes are possible, and extra time.",
		"If the contract covers a different team, a different margin, or a different event, answer false. If unsure, answer false.",
		"Return EXACTLY this JSON format:\n{\n  \"SameOutcome\": true|false,\n  \"Reason\": \"short explanation\"\n}\n\nInput JSON:\n" + string(inputJSON),
	}, "\n"), nil
}

// verdictKey ignores prices so a quote change does not trigger a new LLM call.
func verdictKey(opp models.Opportunity, contract collectors.Contract) string {
	return hashutil.ShortHash(
		contract.Ticker,
		contract.Title,
		contract.Subtitle,
		opp.MatchName,
		opp.SportsbookMarket,
	)
}

func buildOutcomeText(c collectors.Contract, yes bool) string {
	base := strings.TrimSpace(c.Title)
	if yes {
		if c.Subtitle != "" {
			return fmt.Sprintf("YES when: %s", strings.TrimSpace(c.Subtitle))
		}
		return fmt.Sprintf("YES when \"%s\" resolves positively.", base)
	}
	return "NO covers all other outcomes or when the YES condition fails."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func truncateText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit] + " ... (truncated)"
}

func parseResult(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("validator: empty llm response")
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, err
	}
	return &res, nil
}
