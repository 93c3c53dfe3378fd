package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"marketset/internal/config"
	"marketset/internal/dataset"
	"marketset/internal/errors"
)

const (
	barsEndpoint = "/v2/stocks/bars"
	newsEndpoint = "/v1beta1/news"

	// newsPageSize is the per-request item cap accepted by the news endpoint.
	newsPageSize = 50
)

// Client is a rate-limited, retrying HTTP client for the Alpaca data API.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      Policy
	baseURL    string
	creds      Credentials
}

// NewClient creates a fetch client from configuration and credentials.
func NewClient(logger *slog.Logger, cfg config.FetchConfig, creds Credentials) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		retry: Policy{
			MaxAttempts: cfg.MaxAttempts,
			Backoff:     FixedBackoff(cfg.InitialBackoff),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		creds:   creds,
	}
}

// barsResponse is one page of the stock bars endpoint.
type barsResponse struct {
	Bars          map[string][]apiBar `json:"bars"`
	NextPageToken *string             `json:"next_page_token"`
}

type apiBar struct {
	Timestamp time.Time `json:"t"`
	Close     float64   `json:"c"`
	Volume    int64     `json:"v"`
}

// newsResponse is one page of the news endpoint.
type newsResponse struct {
	News          []apiNewsItem `json:"news"`
	NextPageToken *string       `json:"next_page_token"`
}

type apiNewsItem struct {
	Headline  string    `json:"headline"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Symbols   []string  `json:"symbols"`
}

// FetchBars retrieves daily bars for the symbols and maps them to price bars.
// Sector comes from the provided symbol-to-sector map ("Unknown" when
// absent); volatility is left zero for the calculator to fill.
func (c *Client) FetchBars(ctx context.Context, symbols []string, start, end time.Time, timeframe string, sectors map[string]string) ([]dataset.PriceBar, error) {
	if timeframe == "" {
		timeframe = "1Day"
	}

	query := url.Values{
		"symbols":   {strings.Join(symbols, ",")},
		"timeframe": {timeframe},
		"start":     {start.Format(dataset.DateFormat)},
		"end":       {end.Format(dataset.DateFormat)},
	}

	var bars []dataset.PriceBar
	pageToken := ""
	pages := 0

	for {
		var page barsResponse
		if err := c.getJSON(ctx, barsEndpoint, query, pageToken, &page); err != nil {
			return nil, err
		}
		pages++

		for _, symbol := range symbols {
			for _, b := range page.Bars[symbol] {
				sector, ok := sectors[symbol]
				if !ok {
					sector = "Unknown"
				}
				day := b.Timestamp.UTC()
				bars = append(bars, dataset.PriceBar{
					Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
					Ticker: symbol,
					Sector: sector,
					Close:  b.Close,
					Volume: b.Volume,
				})
			}
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		pageToken = *page.NextPageToken
	}

	c.logger.InfoContext(ctx, "fetched price bars",
		slog.Int("bar_count", len(bars)),
		slog.Int("page_count", pages))

	return bars, nil
}

// FetchNews retrieves news items for the symbols, exploding multi-symbol
// items into one headline row per symbol, up to limit rows.
func (c *Client) FetchNews(ctx context.Context, symbols []string, start, end time.Time, limit int) ([]dataset.HeadlineRow, error) {
	query := url.Values{
		"symbols": {strings.Join(symbols, ",")},
		"start":   {start.Format(dataset.DateFormat)},
		"end":     {end.Format(dataset.DateFormat)},
		"limit":   {fmt.Sprintf("%d", newsPageSize)},
	}

	requested := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		requested[s] = true
	}

	var rows []dataset.HeadlineRow
	pageToken := ""
	pages := 0

	for limit <= 0 || len(rows) < limit {
		var page newsResponse
		if err := c.getJSON(ctx, newsEndpoint, query, pageToken, &page); err != nil {
			return nil, err
		}
		pages++

		for _, item := range page.News {
			created := item.CreatedAt.UTC()
			for _, symbol := range item.Symbols {
				if !requested[symbol] {
					continue
				}
				if limit > 0 && len(rows) >= limit {
					break
				}
				createdAt := created
				rows = append(rows, dataset.HeadlineRow{
					Date:      time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, time.UTC),
					Symbol:    symbol,
					Headline:  item.Headline,
					Source:    item.Source,
					CreatedAt: &createdAt,
				})
			}
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		pageToken = *page.NextPageToken
	}

	c.logger.InfoContext(ctx, "fetched news headlines",
		slog.Int("headline_count", len(rows)),
		slog.Int("page_count", pages))

	return rows, nil
}

// getJSON performs one rate-limited, retried GET and decodes the JSON body.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, pageToken string, out interface{}) error {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if pageToken != "" {
		q.Set("page_token", pageToken)
	}
	requestURL := c.baseURL + endpoint + "?" + q.Encode()

	return c.retry.Do(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return errors.NewNetworkError("failed to build request", err)
		}
		req.Header.Set("APCA-API-KEY-ID", c.creds.APIKey)
		req.Header.Set("APCA-API-SECRET-KEY", c.creds.APISecret)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return errors.NewNetworkError("request failed", err).
				WithContext("url", requestURL)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return errors.NewNetworkError(
				fmt.Sprintf("unexpected status %d", resp.StatusCode), nil).
				WithContext("url", requestURL).
				WithContext("body", string(body))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NewParsingError("failed to decode response", err).
				WithContext("url", requestURL)
		}
		return nil
	})
}
