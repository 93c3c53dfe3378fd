package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketset/internal/config"
	apperrors "marketset/internal/errors"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(slog.Default(), config.FetchConfig{
		BaseURL:        serverURL,
		Timeout:        5 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		RequestsPerSec: 1000,
		Burst:          1000,
	}, Credentials{APIKey: "test-key", APISecret: "test-secret"})
}

func TestFetchBars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/stocks/bars", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "test-secret", r.Header.Get("APCA-API-SECRET-KEY"))
		assert.Equal(t, "AAPL,MSFT", r.URL.Query().Get("symbols"))
		assert.Equal(t, "1Day", r.URL.Query().Get("timeframe"))

		fmt.Fprint(w, `{
			"bars": {
				"AAPL": [
					{"t": "2024-01-02T05:00:00Z", "c": 185.64, "v": 1000},
					{"t": "2024-01-03T05:00:00Z", "c": 184.25, "v": 1100}
				],
				"MSFT": [
					{"t": "2024-01-02T05:00:00Z", "c": 370.87, "v": 900}
				]
			},
			"next_page_token": null
		}`)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	sectors := map[string]string{"AAPL": "Tech"}

	bars, err := client.FetchBars(context.Background(),
		[]string{"AAPL", "MSFT"},
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		"", sectors)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, "AAPL", bars[0].Ticker)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, "Tech", bars[0].Sector)
	assert.Equal(t, 185.64, bars[0].Close)
	assert.Equal(t, int64(1000), bars[0].Volume)
	assert.Zero(t, bars[0].Volatility)

	// Symbols absent from the sector map fall back to Unknown
	assert.Equal(t, "MSFT", bars[2].Ticker)
	assert.Equal(t, "Unknown", bars[2].Sector)
}

func TestFetchBars_FollowsPageToken(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			assert.Empty(t, r.URL.Query().Get("page_token"))
			fmt.Fprint(w, `{
				"bars": {"AAPL": [{"t": "2024-01-02T05:00:00Z", "c": 185.64, "v": 1000}]},
				"next_page_token": "page-2"
			}`)
			return
		}
		assert.Equal(t, "page-2", r.URL.Query().Get("page_token"))
		fmt.Fprint(w, `{
			"bars": {"AAPL": [{"t": "2024-01-03T05:00:00Z", "c": 184.25, "v": 1100}]},
			"next_page_token": null
		}`)
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	bars, err := client.FetchBars(context.Background(),
		[]string{"AAPL"},
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		"1Day", nil)
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&requests))
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), bars[1].Date)
}

func TestFetchBars_RetriesServerErrors(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"bars": {"AAPL": [{"t": "2024-01-02T05:00:00Z", "c": 185.64, "v": 1000}]}, "next_page_token": null}`)
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	bars, err := client.FetchBars(context.Background(),
		[]string{"AAPL"},
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		"1Day", nil)
	require.NoError(t, err)

	assert.EqualValues(t, 3, atomic.LoadInt32(&requests))
	require.Len(t, bars, 1)
}

func TestFetchBars_FailsAfterRetryBudget(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.FetchBars(context.Background(),
		[]string{"AAPL"},
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		"1Day", nil)
	require.Error(t, err)

	assert.EqualValues(t, 3, atomic.LoadInt32(&requests))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNetwork))
}

func TestFetchNews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta1/news", r.URL.Path)
		assert.Equal(t, "AAPL,MSFT", r.URL.Query().Get("symbols"))

		fmt.Fprint(w, `{
			"news": [
				{
					"headline": "AAPL reports record revenue",
					"source": "Reuters",
					"created_at": "2024-01-02T13:45:00Z",
					"symbols": ["AAPL", "SPY"]
				},
				{
					"headline": "Tech megacaps rally",
					"source": "Bloomberg",
					"created_at": "2024-01-03T09:30:00Z",
					"symbols": ["AAPL", "MSFT"]
				}
			],
			"next_page_token": null
		}`)
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	rows, err := client.FetchNews(context.Background(),
		[]string{"AAPL", "MSFT"},
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		0)
	require.NoError(t, err)

	// SPY was not requested, so the first item yields one row; the second
	// item explodes into one row per requested symbol.
	require.Len(t, rows, 3)

	assert.Equal(t, "AAPL", rows[0].Symbol)
	assert.Equal(t, "AAPL reports record revenue", rows[0].Headline)
	assert.Equal(t, "Reuters", rows[0].Source)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), rows[0].Date)
	require.NotNil(t, rows[0].CreatedAt)
	assert.Equal(t, time.Date(2024, 1, 2, 13, 45, 0, 0, time.UTC), *rows[0].CreatedAt)

	assert.Equal(t, "AAPL", rows[1].Symbol)
	assert.Equal(t, "MSFT", rows[2].Symbol)
	assert.Equal(t, "Tech megacaps rally", rows[2].Headline)
}

func TestFetchNews_StopsAtLimit(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, `{
			"news": [
				{"headline": "one", "source": "Reuters", "created_at": "2024-01-02T09:30:00Z", "symbols": ["AAPL"]},
				{"headline": "two", "source": "Reuters", "created_at": "2024-01-02T10:30:00Z", "symbols": ["AAPL"]},
				{"headline": "three", "source": "Reuters", "created_at": "2024-01-02T11:30:00Z", "symbols": ["AAPL"]}
			],
			"next_page_token": "more"
		}`)
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	rows, err := client.FetchNews(context.Background(),
		[]string{"AAPL"},
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		2)
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&requests))
	require.Len(t, rows, 2)
	assert.Equal(t, "two", rows[1].Headline)
}

func TestGetJSON_MalformedBodyIsParsingError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bars": not-json`)
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.FetchBars(context.Background(),
		[]string{"AAPL"},
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		"1Day", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsParsing(err))
}
