package validator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/models"
)

type fakeLLM struct {
	calls    int
	prompts  []string
	response func(user string) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, user)
	return f.response(user)
}

type memVerdicts struct {
	m map[string]bool
}

func (c *memVerdicts) Get(_ context.Context, key string) (bool, bool, error) {
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *memVerdicts) Set(_ context.Context, key string, verdict bool) error {
	c.m[key] = verdict
	return nil
}

func (c *memVerdicts) Close() error { return nil }

var (
	contractA = collectors.Contract{Ticker: "SOCCER-A", Title: "Team A vs Team B", Subtitle: "Team A -1.5 goals", YesAsk: 45}
	contractB = collectors.Contract{Ticker: "SOCCER-B", Title: "Team A vs Team B", Subtitle: "Team B +1.5 goals", YesAsk: 38}
	oppA      = models.Opportunity{MatchName: "Team A vs Team B", Sportsbook: "book", SportsbookMarket: "Team A -1.5", SportsbookOdds: -110, KalshiContract: "SOCCER-A", KalshiPrice: 45}
	oppB      = models.Opportunity{MatchName: "Team A vs Team B", Sportsbook: "book", SportsbookMarket: "Team B +1.5", SportsbookOdds: 120, KalshiContract: "SOCCER-B", KalshiPrice: 38}
)

func TestNewServiceRequiresLLM(t *testing.T) {
	_, err := NewService(Config{})
	require.Error(t, err)
}

func TestValidateUsesCache(t *testing.T) {
	llm := &fakeLLM{response: func(string) (string, error) {
		return "Sure:\n{\"SameOutcome\": true, \"Reason\": \"same side\"}\n", nil
	}}
	verdicts := &memVerdicts{m: map[string]bool{}}
	svc, err := NewService(Config{LLM: llm, Cache: verdicts})
	require.NoError(t, err)

	res, err := svc.Validate(context.Background(), oppA, contractA)
	require.NoError(t, err)
	assert.True(t, res.SameOutcome)
	assert.False(t, res.Cached)
	assert.Contains(t, llm.prompts[0], `"subtitle": "Team A -1.5 goals"`)
	assert.Contains(t, llm.prompts[0], `"market": "Team A -1.5"`)

	moved := oppA
	moved.KalshiPrice = 47
	res, err = svc.Validate(context.Background(), moved, contractA)
	require.NoError(t, err)
	assert.True(t, res.Cached, "price moves reuse the verdict")
	assert.Equal(t, 1, llm.calls)
}

func TestValidateErrors(t *testing.T) {
	svc, err := NewService(Config{LLM: &fakeLLM{response: func(string) (string, error) { return "", errors.New("timeout") }}})
	require.NoError(t, err)
	_, err = svc.Validate(context.Background(), oppA, contractA)
	assert.ErrorContains(t, err, "llm call")

	svc, err = NewService(Config{LLM: &fakeLLM{response: func(string) (string, error) { return "no json here", nil }}})
	require.NoError(t, err)
	_, err = svc.Validate(context.Background(), oppA, contractA)
	assert.ErrorContains(t, err, "parse response")
}

func TestFilter(t *testing.T) {
	llm := &fakeLLM{response: func(user string) (string, error) {
		switch {
		case strings.Contains(user, "SOCCER-A"):
			return `{"SameOutcome": true, "Reason": "ok"}`, nil
		case strings.Contains(user, "SOCCER-B"):
			return `{"SameOutcome": false, "Reason": "different margin"}`, nil
		default:
			return "", errors.New("boom")
		}
	}}
	svc, err := NewService(Config{LLM: llm})
	require.NoError(t, err)

	unknown := oppA
	unknown.KalshiContract = "MISSING"
	failing := oppA
	failing.KalshiContract = "SOCCER-C"

	contracts := map[string]collectors.Contract{
		"SOCCER-A": contractA,
		"SOCCER-B": contractB,
		"SOCCER-C": {Ticker: "SOCCER-C"},
	}
	kept := svc.Filter(context.Background(), []models.Opportunity{oppA, oppB, unknown, failing}, contracts)
	require.Len(t, kept, 3)
	assert.Equal(t, "SOCCER-A", kept[0].KalshiContract)
	assert.Equal(t, "MISSING", kept[1].KalshiContract)
	assert.Equal(t, "SOCCER-C", kept[2].KalshiContract)
}

func TestParseResult(t *testing.T) {
	res, err := parseResult("```json\n{\"SameOutcome\":false,\"Reason\":\"x\"}\n```")
	require.NoError(t, err)
	assert.False(t, res.SameOutcome)
	assert.Equal(t, "x", res.Reason)

	_, err = parseResult("   ")
	assert.Error(t, err)
}

func TestBuildOutcomeText(t *testing.T) {
	assert.Equal(t, "YES when: Team A -1.5 goals", buildOutcomeText(contractA, true))
	assert.Equal(t, `YES when "Only title" resolves positively.`, buildOutcomeText(collectors.Contract{Title: "Only title"}, true))
	assert.Contains(t, buildOutcomeText(contractA, false), "NO covers")
}
