// Package sportsbook holds the per-sportsbook odds collectors. Every client
// normalizes its upstream payload to collectors.Match before returning.
package sportsbook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/config"
	"github.com/hetulpatel/KalshiOdds/internal/logging"
)

const defaultDays = 7

// Config provides optional overrides for a generic sportsbook client.
type Config struct {
	Name    string
	BaseURL string
	APIKey  string
	// Mock serves built-in fixtures instead of calling BaseURL.
	Mock    bool
	Days    int
	Timeout time.Duration
	Now     func() time.Time
}

// Client talks to a sportsbook exposing GET {base}/odds/soccer.
type Client struct {
	name       string
	baseURL    string
	apiKey     string
	mock       bool
	days       int
	now        func() time.Time
	httpClient *http.Client
}

// NewClient builds a generic sportsbook client.
func NewClient(cfg Config) *Client {
	days := cfg.Days
	if days <= 0 {
		days = defaultDays
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		name:       cfg.Name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		mock:       cfg.Mock,
		days:       days,
		now:        now,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

// New returns the collector for a configured sportsbook entry.
func New(sb config.SportsbookConfig) (collectors.SportsbookCollector, error) {
	switch sb.ResolvedKind() {
	case config.KindSportsGameOdds:
		return NewSportsGameOdds(SportsGameOddsConfig{
			Name:    sb.Name,
			BaseURL: sb.BaseURL,
			APIKey:  sb.APIKey,
			Timeout: sb.Timeout,
		}), nil
	case config.KindGeneric:
		return NewClient(Config{
			Name:    sb.Name,
			BaseURL: sb.BaseURL,
			APIKey:  sb.APIKey,
			Mock:    sb.Mock,
			Days:    sb.Days,
			Timeout: sb.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("sportsbook %q: unknown kind %q", sb.Name, sb.Kind)
	}
}

func (c *Client) Name() string {
	return c.name
}

// FetchMatches returns upcoming soccer matches with spread markets for the
// next c.days days.
func (c *Client) FetchMatches(ctx context.Context) ([]collectors.Match, error) {
	now := c.now()
	if c.mock {
		logging.Infof("[%s] serving mock soccer matches", c.name)
		return MockMatches(now), nil
	}

	u, err := url.Parse(c.baseURL + "/odds/soccer")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("from_date", now.Format("2006-01-02"))
	q.Set("to_date", now.AddDate(0, 0, c.days).Format("2006-01-02"))
	q.Set("market", collectors.MarketTypeSpread)
	u.RawQuery = q.Encode()

	var payload genericResponse
	if err := getJSON(ctx, c.httpClient, u.String(), c.apiKey, &payload); err != nil {
		return nil, fmt.Errorf("fetch %s matches: %w", c.name, err)
	}

	matches := processGeneric(payload.Events)
	logging.Infof("[%s] retrieved %d soccer matches", c.name, len(matches))
	return matches, nil
}

func processGeneric(events []genericEvent) []collectors.Match {
	matches := make([]collectors.Match, 0, len(events))
	for _, ev := range events {
		m := collectors.Match{
			ID:          ev.ID,
			HomeTeam:    ev.HomeTeam,
			AwayTeam:    ev.AwayTeam,
			StartTime:   parseTime(ev.StartTime),
			Competition: ev.Competition,
		}
		for _, mk := range ev.Markets {
			if mk.Type != collectors.MarketTypeSpread {
				continue
			}
			m.Markets = append(m.Markets, collectors.SpreadMarket{
				Type:       collectors.MarketTypeSpread,
				HomeSpread: floatOr(mk.HomeSpread),
				HomeOdds:   intOr(mk.HomeOdds),
				AwaySpread: floatOr(mk.AwaySpread),
				AwayOdds:   intOr(mk.AwayOdds),
			})
		}
		matches = append(matches, m)
	}
	return matches
}

type genericResponse struct {
	Events []genericEvent `json:"events"`
}

type genericEvent struct {
	ID          string          `json:"id"`
	HomeTeam    string          `json:"home_team"`
	AwayTeam    string          `json:"away_team"`
	StartTime   string          `json:"start_time"`
	Competition string          `json:"competition"`
	Markets     []genericMarket `json:"markets"`
}

type genericMarket struct {
	Type       string   `json:"type"`
	HomeSpread *float64 `json:"home_spread"`
	HomeOdds   *int     `json:"home_odds"`
	AwaySpread *float64 `json:"away_spread"`
	AwayOdds   *int     `json:"away_odds"`
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func getJSON(ctx context.Context, client *http.Client, rawURL, apiKey string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func floatOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOr(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
