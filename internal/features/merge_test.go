package features

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketset/internal/dataset"
)

func TestMerger_FullMatch(t *testing.T) {
	merger := NewMerger(slog.Default())

	ts := time.Date(2024, 1, 2, 13, 45, 0, 0, time.UTC)
	prices := []dataset.PriceBar{
		{Date: day(t, "2024-01-02"), Ticker: "AAPL", Sector: "Tech", Close: 100, Volume: 1000, Volatility: 0.2},
	}
	returns := []dataset.ReturnRow{
		{Date: day(t, "2024-01-02"), Ticker: "AAPL", Return: 0.01},
	}
	headlines := []dataset.HeadlineRow{
		{Date: day(t, "2024-01-02"), Symbol: "AAPL", Headline: "AAPL beats expectations", Source: "Reuters", CreatedAt: &ts},
	}

	merged := merger.Merge(context.Background(), prices, returns, headlines)
	require.Len(t, merged, 1)

	row := merged[0]
	assert.Equal(t, "AAPL", row.Ticker)
	assert.Equal(t, "AAPL beats expectations", row.Headline)
	assert.Equal(t, "Reuters", row.Source)
	require.NotNil(t, row.CreatedAt)

	require.NotNil(t, row.Sector)
	assert.Equal(t, "Tech", *row.Sector)
	require.NotNil(t, row.Close)
	assert.Equal(t, 100.0, *row.Close)
	require.NotNil(t, row.Volume)
	assert.Equal(t, int64(1000), *row.Volume)
	require.NotNil(t, row.Volatility)
	assert.Equal(t, 0.2, *row.Volatility)
	require.NotNil(t, row.Return)
	assert.Equal(t, 0.01, *row.Return)
}

func TestMerger_HeadlineWithoutMarketDataKept(t *testing.T) {
	merger := NewMerger(slog.Default())

	prices := []dataset.PriceBar{
		{Date: day(t, "2024-01-02"), Ticker: "AAPL", Sector: "Tech", Close: 100, Volume: 1000, Volatility: 0.2},
	}
	returns := []dataset.ReturnRow{
		{Date: day(t, "2024-01-02"), Ticker: "AAPL", Return: 0.01},
	}
	headlines := []dataset.HeadlineRow{
		{Date: day(t, "2024-01-02"), Symbol: "AAPL", Headline: "AAPL beats expectations"},
		{Date: day(t, "2024-01-05"), Symbol: "TSLA", Headline: "TSLA unveils new product lineup"},
	}

	merged := merger.Merge(context.Background(), prices, returns, headlines)
	require.Len(t, merged, 2)

	// Left join: the unmatched headline survives with null market fields.
	unmatched := merged[1]
	assert.Equal(t, "TSLA", unmatched.Ticker)
	assert.Nil(t, unmatched.Sector)
	assert.Nil(t, unmatched.Close)
	assert.Nil(t, unmatched.Volume)
	assert.Nil(t, unmatched.Volatility)
	assert.Nil(t, unmatched.Return)
}

func TestMerger_InnerJoinDropsHalfMatchedMarketData(t *testing.T) {
	merger := NewMerger(slog.Default())

	// Price row with no matching return row: the inner join drops it, so the
	// headline on that key gets null market fields.
	prices := []dataset.PriceBar{
		{Date: day(t, "2024-01-02"), Ticker: "AAPL", Sector: "Tech", Close: 100, Volume: 1000, Volatility: 0.2},
	}
	headlines := []dataset.HeadlineRow{
		{Date: day(t, "2024-01-02"), Symbol: "AAPL", Headline: "AAPL beats expectations"},
	}

	merged := merger.Merge(context.Background(), prices, nil, headlines)
	require.Len(t, merged, 1)
	assert.Nil(t, merged[0].Close)
	assert.Nil(t, merged[0].Return)
}

func TestMerger_MultipleHeadlinesDuplicateMarketRow(t *testing.T) {
	merger := NewMerger(slog.Default())

	prices := []dataset.PriceBar{
		{Date: day(t, "2024-01-02"), Ticker: "AAPL", Sector: "Tech", Close: 100, Volume: 1000, Volatility: 0.2},
	}
	returns := []dataset.ReturnRow{
		{Date: day(t, "2024-01-02"), Ticker: "AAPL", Return: 0.01},
	}
	headlines := []dataset.HeadlineRow{
		{Date: day(t, "2024-01-02"), Symbol: "AAPL", Headline: "first"},
		{Date: day(t, "2024-01-02"), Symbol: "AAPL", Headline: "second"},
	}

	merged := merger.Merge(context.Background(), prices, returns, headlines)
	require.Len(t, merged, 2)

	// Insertion order preserved, no deduplication.
	assert.Equal(t, "first", merged[0].Headline)
	assert.Equal(t, "second", merged[1].Headline)
	for _, row := range merged {
		require.NotNil(t, row.Close)
		assert.Equal(t, 100.0, *row.Close)
		require.NotNil(t, row.Return)
		assert.Equal(t, 0.01, *row.Return)
	}
}

func TestMerger_MarketDataWithoutHeadlineAbsent(t *testing.T) {
	merger := NewMerger(slog.Default())

	prices := []dataset.PriceBar{
		{Date: day(t, "2024-01-02"), Ticker: "AAPL", Sector: "Tech", Close: 100, Volume: 1000, Volatility: 0.2},
		{Date: day(t, "2024-01-03"), Ticker: "AAPL", Sector: "Tech", Close: 101, Volume: 900, Volatility: 0.21},
	}
	returns := []dataset.ReturnRow{
		{Date: day(t, "2024-01-02"), Ticker: "AAPL", Return: 0.01},
		{Date: day(t, "2024-01-03"), Ticker: "AAPL", Return: 0.01},
	}
	headlines := []dataset.HeadlineRow{
		{Date: day(t, "2024-01-02"), Symbol: "AAPL", Headline: "only this day has news"},
	}

	merged := merger.Merge(context.Background(), prices, returns, headlines)
	require.Len(t, merged, 1)
	assert.Equal(t, day(t, "2024-01-02"), merged[0].Date)
}

func TestMerger_NullDatesNeverJoin(t *testing.T) {
	merger := NewMerger(slog.Default())

	prices := []dataset.PriceBar{
		{Ticker: "AAPL", Sector: "Tech", Close: 100, Volume: 1000, Volatility: 0.2},
	}
	returns := []dataset.ReturnRow{
		{Ticker: "AAPL", Return: 0.01},
	}
	headlines := []dataset.HeadlineRow{
		{Symbol: "AAPL", Headline: "undated headline"},
	}

	merged := merger.Merge(context.Background(), prices, returns, headlines)
	require.Len(t, merged, 1)
	assert.Nil(t, merged[0].Close)
}

func TestMerger_EmptyInputs(t *testing.T) {
	merger := NewMerger(slog.Default())

	merged := merger.Merge(context.Background(), nil, nil, nil)
	assert.Empty(t, merged)
}
