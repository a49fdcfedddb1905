package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/logging"
)

const (
	defaultBaseURL      = "https://api.elections.kalshi.com/trade-api/v2"
	defaultSeriesTicker = "SOCCER"
	maxPageSize         = 200
	maxAttempts         = 5
)

// Client talks to the Kalshi Trade API markets endpoint.
type Client struct {
	baseURL      string
	apiKey       string
	seriesTicker string
	httpClient   *http.Client
	retryBase    time.Duration
}

// Config provides optional overrides.
type Config struct {
	BaseURL      string
	APIKey       string
	SeriesTicker string
	Timeout      time.Duration
	// RetryBase is the first backoff step; it doubles per attempt up to 30s.
	RetryBase time.Duration
}

// NewClient builds a configured Kalshi API client.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	series := cfg.SeriesTicker
	if series == "" {
		series = defaultSeriesTicker
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	retryBase := cfg.RetryBase
	if retryBase == 0 {
		retryBase = time.Second
	}
	return &Client{
		baseURL:      base,
		apiKey:       cfg.APIKey,
		seriesTicker: series,
		retryBase:    retryBase,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Name() string {
	return string(collectors.SourceKalshi)
}

// FetchContracts pages through open markets for the configured series and
// returns them normalized. opts.Pages <= 0 means follow the cursor to the end.
func (c *Client) FetchContracts(ctx context.Context, opts collectors.FetchOptions) ([]collectors.Contract, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize // API limit
	}

	var (
		out    []collectors.Contract
		cursor string
	)
	for page := 1; opts.Pages <= 0 || page <= opts.Pages; page++ {
		resp, err := c.listMarkets(ctx, pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("list kalshi markets (page %d): %w", page, err)
		}
		logging.Debugf("[kalshi] page %d: %d markets (cursor: %q)", page, len(resp.Markets), cursor)

		for i := range resp.Markets {
			contract, ok := normalizeMarket(&resp.Markets[i])
			if !ok {
				logging.Debugf("[kalshi] skip market %s: no yes_ask", resp.Markets[i].Ticker)
				continue
			}
			out = append(out, contract)
		}

		cursor = resp.Cursor
		if cursor == "" || len(resp.Markets) == 0 {
			break
		}
	}

	logging.Infof("[kalshi] retrieved %d %s markets", len(out), c.seriesTicker)
	return out, nil
}

func (c *Client) listMarkets(ctx context.Context, limit int, cursor string) (*marketsResponse, error) {
	u, err := url.Parse(c.baseURL + "/markets")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("status", "open")
	q.Set("series_ticker", c.seriesTicker)
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	u.RawQuery = q.Encode()

	var out marketsResponse
	if err := c.do(ctx, u.String(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, rawURL string, dst any) error {
	var attempt int
	for {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() == nil && shouldRetry(attempt, 0) {
				if err := c.sleep(ctx, attempt); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
				return fmt.Errorf("decode kalshi response: %w", err)
			}
			return nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()

		if shouldRetry(attempt, resp.StatusCode) {
			logging.Debugf("[kalshi] retrying after %s (attempt %d)", resp.Status, attempt)
			if err := c.sleep(ctx, attempt); err != nil {
				return err
			}
			continue
		}
		return fmt.Errorf("kalshi API %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
}

func normalizeMarket(m *market) (collectors.Contract, bool) {
	if m.YesAsk == nil {
		return collectors.Contract{}, false
	}

	var closeTime time.Time
	if m.CloseTime != "" {
		if ts, err := time.Parse(time.RFC3339, m.CloseTime); err == nil {
			closeTime = ts
		}
	}

	subtitle := m.Subtitle
	if subtitle == "" {
		subtitle = m.YesSubTitle
	}
	id := m.ID
	if id == "" {
		id = m.Ticker
	}

	return collectors.Contract{
		ID:        id,
		Ticker:    m.Ticker,
		Title:     m.Title,
		Subtitle:  subtitle,
		CloseTime: closeTime,
		YesBid:    intOr(m.YesBid),
		YesAsk:    *m.YesAsk,
		NoBid:     intOr(m.NoBid),
		NoAsk:     intOr(m.NoAsk),
		LastPrice: intOr(m.LastPrice),
		Volume:    m.Volume,
	}, true
}

func intOr(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

type marketsResponse struct {
	Markets []market `json:"markets"`
	Cursor  string   `json:"cursor"`
}

type market struct {
	ID          string `json:"id"`
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	YesSubTitle string `json:"yes_sub_title"`
	Status      string `json:"status"`
	CloseTime   string `json:"close_time"`
	YesBid      *int   `json:"yes_bid"`
	YesAsk      *int   `json:"yes_ask"`
	NoBid       *int   `json:"no_bid"`
	NoAsk       *int   `json:"no_ask"`
	LastPrice   *int   `json:"last_price"`
	Volume      int64  `json:"volume"`
}

func shouldRetry(attempt int, status int) bool {
	if attempt >= maxAttempts {
		return false
	}
	if status == 0 {
		return true
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return true
	}
	return false
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	backoff := c.retryBase * time.Duration(1<<uint(attempt-1))
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}
