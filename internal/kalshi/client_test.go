package kalshi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
)

func newTestClient(url string) *Client {
	return NewClient(Config{BaseURL: url, APIKey: "secret", SeriesTicker: "KXEPL", RetryBase: time.Millisecond})
}

func TestFetchContractsPaginates(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "open", q.Get("status"))
		assert.Equal(t, "KXEPL", q.Get("series_ticker"))
		assert.Equal(t, "200", q.Get("limit"))

		switch q.Get("cursor") {
		case "":
			fmt.Fprint(w, `{"cursor":"p2","markets":[
				{"ticker":"ARS-CHE-1","title":"Arsenal vs Chelsea","subtitle":"Arsenal -1.5 goals",
				 "close_time":"2025-04-10T19:00:00Z","yes_bid":38,"yes_ask":40,"no_bid":59,"no_ask":61,
				 "last_price":39,"volume":1200},
				{"ticker":"NOASK","title":"Illiquid"}
			]}`)
		case "p2":
			fmt.Fprint(w, `{"cursor":"","markets":[
				{"id":"m-2","ticker":"BAR-RMA","title":"Barcelona vs Real Madrid","yes_sub_title":"Real Madrid +1",
				 "yes_ask":0}
			]}`)
		default:
			t.Errorf("unexpected cursor %q", q.Get("cursor"))
		}
	}))
	defer srv.Close()

	contracts, err := newTestClient(srv.URL).FetchContracts(context.Background(), collectors.FetchOptions{PageSize: 500})
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	require.Len(t, contracts, 2)

	first := contracts[0]
	assert.Equal(t, "ARS-CHE-1", first.ID, "ticker used when id missing")
	assert.Equal(t, "Arsenal -1.5 goals", first.Subtitle)
	assert.Equal(t, 40, first.YesAsk)
	assert.Equal(t, 61, first.NoAsk)
	assert.EqualValues(t, 1200, first.Volume)
	assert.Equal(t, time.Date(2025, 4, 10, 19, 0, 0, 0, time.UTC), first.CloseTime.UTC())

	second := contracts[1]
	assert.Equal(t, "m-2", second.ID)
	assert.Equal(t, "Real Madrid +1", second.Subtitle)
	assert.Equal(t, 0, second.YesAsk)
	assert.Equal(t, 0, second.LastPrice)
	assert.True(t, second.CloseTime.IsZero())
}

func TestFetchContractsRespectsPageLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"cursor":"c%d","markets":[{"ticker":"T%d","yes_ask":50}]}`, n, n)
	}))
	defer srv.Close()

	contracts, err := newTestClient(srv.URL).FetchContracts(context.Background(), collectors.FetchOptions{Pages: 3})
	require.NoError(t, err)
	assert.Len(t, contracts, 3)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"markets":[{"ticker":"OK","yes_ask":12}]}`)
	}))
	defer srv.Close()

	contracts, err := newTestClient(srv.URL).FetchContracts(context.Background(), collectors.FetchOptions{})
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchContracts(context.Background(), collectors.FetchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad token")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchContracts(context.Background(), collectors.FetchOptions{})
	require.Error(t, err)
	assert.EqualValues(t, maxAttempts, atomic.LoadInt32(&calls))
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, shouldRetry(1, 0))
	assert.True(t, shouldRetry(1, http.StatusTooManyRequests))
	assert.True(t, shouldRetry(4, http.StatusBadGateway))
	assert.False(t, shouldRetry(maxAttempts, http.StatusBadGateway))
	assert.False(t, shouldRetry(1, http.StatusNotFound))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{BaseURL: "https://example.test/v2/"})
	assert.Equal(t, "https://example.test/v2", c.baseURL)
	assert.Equal(t, defaultSeriesTicker, c.seriesTicker)
	assert.Equal(t, "kalshi", c.Name())
}
