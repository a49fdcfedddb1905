package sportsbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/logging"
	"github.com/hetulpatel/KalshiOdds/internal/odds"
)

const defaultSportsGameOddsURL = "https://api.sportsgameodds.com/v1"

// ErrUnexpectedPayload is returned when the events response is not
// {"success": true, "data": [...]}.
var ErrUnexpectedPayload = errors.New("unexpected API response structure")

type SportsGameOddsConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SportsGameOdds talks to the SportsGameOdds events API.
type SportsGameOdds struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSportsGameOdds(cfg SportsGameOddsConfig) *SportsGameOdds {
	name := cfg.Name
	if name == "" {
		name = string(collectors.SourceSportsGameOdds)
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultSportsGameOddsURL
	}
	return &SportsGameOdds{
		name:       name,
		baseURL:    base,
		apiKey:     cfg.APIKey,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

func (s *SportsGameOdds) Name() string {
	return s.name
}

// FetchMatches returns upcoming soccer events that carry at least one
// two-sided spread market.
func (s *SportsGameOdds) FetchMatches(ctx context.Context) ([]collectors.Match, error) {
	u, err := url.Parse(s.baseURL + "/events")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("sportId", "SOCCER")
	q.Set("status", "UPCOMING")
	q.Set("includeMarkets", "true")
	q.Set("marketTypes", "SPREAD")
	u.RawQuery = q.Encode()

	var payload sgoResponse
	if err := getJSON(ctx, s.httpClient, u.String(), s.apiKey, &payload); err != nil {
		return nil, fmt.Errorf("fetch %s events: %w", s.name, err)
	}
	if !payload.Success || payload.Data == nil {
		return nil, fmt.Errorf("fetch %s events: %w", s.name, ErrUnexpectedPayload)
	}

	matches := processSportsGameOdds(payload.Data)
	logging.Infof("[%s] retrieved %d soccer matches", s.name, len(matches))
	return matches, nil
}

func processSportsGameOdds(events []sgoEvent) []collectors.Match {
	var matches []collectors.Match
	for _, ev := range events {
		m := collectors.Match{
			ID:          ev.ID,
			HomeTeam:    ev.HomeTeam.Name,
			AwayTeam:    ev.AwayTeam.Name,
			StartTime:   parseTime(ev.StartTime),
			Competition: ev.Competition.Name,
		}

		for _, mk := range ev.Markets {
			if mk.MarketType != "SPREAD" {
				continue
			}
			market := collectors.SpreadMarket{Type: collectors.MarketTypeSpread}
			var hasHome, hasAway bool
			for _, out := range mk.Outcomes {
				switch {
				case out.Name == m.HomeTeam:
					market.HomeSpread = parseHandicap(out.Handicap)
					market.HomeOdds = parsePrice(out.Price)
					hasHome = true
				case out.Name == m.AwayTeam:
					market.AwaySpread = parseHandicap(out.Handicap)
					market.AwayOdds = parsePrice(out.Price)
					hasAway = true
				}
			}
			if hasHome && hasAway {
				m.Markets = append(m.Markets, market)
			}
		}

		if len(m.Markets) > 0 {
			matches = append(matches, m)
		} else {
			logging.Debugf("[sportsgameodds] drop event %s: no two-sided spread market", ev.ID)
		}
	}
	return matches
}

// parsePrice maps an outcome price to American odds. Signed strings are
// American; JSON numbers are decimal odds. Anything else yields 0.
func parsePrice(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(s, "-") && !strings.HasPrefix(s, "+") {
			return 0
		}
		n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
		if err != nil {
			return 0
		}
		return n
	}

	var dec float64
	if err := json.Unmarshal(raw, &dec); err != nil {
		return 0
	}
	american, err := odds.DecimalToAmerican(dec)
	if err != nil {
		logging.Debugf("[sportsgameodds] unusable decimal price %v: %v", dec, err)
		return 0
	}
	return american
}

// parseHandicap accepts a number or numeric string; empty or invalid is 0.
func parseHandicap(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		return f
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	return f
}

type sgoResponse struct {
	Success bool       `json:"success"`
	Data    []sgoEvent `json:"data"`
}

type sgoEvent struct {
	ID          string      `json:"id"`
	HomeTeam    sgoNamed    `json:"homeTeam"`
	AwayTeam    sgoNamed    `json:"awayTeam"`
	StartTime   string      `json:"startTime"`
	Competition sgoNamed    `json:"competition"`
	Markets     []sgoMarket `json:"markets"`
}

type sgoNamed struct {
	Name string `json:"name"`
}

type sgoMarket struct {
	MarketType string       `json:"marketType"`
	Outcomes   []sgoOutcome `json:"outcomes"`
}

type sgoOutcome struct {
	Name     string          `json:"name"`
	Handicap json.RawMessage `json:"handicap"`
	Price    json.RawMessage `json:"price"`
}
