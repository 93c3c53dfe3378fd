package features

import (
	"context"
	"log/slog"
	"time"

	"marketset/internal/dataset"
)

// Merger joins prices, returns and headlines into one denormalized table
// keyed by (date, ticker).
type Merger struct {
	logger *slog.Logger
}

// NewMerger creates a new dataset merger.
func NewMerger(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{logger: logger}
}

// mergeKey identifies a (date, ticker) pair. Null dates never join.
type mergeKey struct {
	date   int64
	ticker string
}

// marketData is one inner-joined price/return row.
type marketData struct {
	sector     string
	close      float64
	volume     int64
	volatility float64
	ret        float64
	matched    bool
}

// Merge inner-joins prices and returns on (date, ticker), then left-joins
// headlines onto the result with the headlines' symbol column aligned to the
// ticker key. Every headline row is preserved, with null market fields when
// no price/return pair exists for its key; multiple headlines on one key each
// duplicate the matched market row. Price/return pairs with no headline do
// not appear in the output; their count is logged since that drop is easy to
// miss.
func (m *Merger) Merge(ctx context.Context, prices []dataset.PriceBar, returns []dataset.ReturnRow, headlines []dataset.HeadlineRow) []dataset.MergedRow {
	m.logger.InfoContext(ctx, "merging dataset",
		slog.Int("price_count", len(prices)),
		slog.Int("return_count", len(returns)),
		slog.Int("headline_count", len(headlines)))

	returnsByKey := make(map[mergeKey]float64, len(returns))
	for _, r := range returns {
		if key, ok := keyFor(r.Date, r.Ticker); ok {
			returnsByKey[key] = r.Return
		}
	}

	// Inner join: only price rows with a matching return row survive.
	market := make(map[mergeKey]*marketData, len(prices))
	for _, p := range prices {
		key, ok := keyFor(p.Date, p.Ticker)
		if !ok {
			continue
		}
		ret, ok := returnsByKey[key]
		if !ok {
			continue
		}
		market[key] = &marketData{
			sector:     p.Sector,
			close:      p.Close,
			volume:     p.Volume,
			volatility: p.Volatility,
			ret:        ret,
		}
	}

	merged := make([]dataset.MergedRow, 0, len(headlines))
	unmatchedHeadlines := 0

	for _, h := range headlines {
		row := dataset.MergedRow{
			Date:           h.Date,
			Ticker:         h.Symbol,
			Headline:       h.Headline,
			Source:         h.Source,
			CreatedAt:      h.CreatedAt,
			SentimentScore: h.SentimentScore,
			SentimentBin:   h.SentimentBin,
		}

		if key, ok := keyFor(h.Date, h.Symbol); ok {
			if md, ok := market[key]; ok {
				md.matched = true
				sector := md.sector
				closePrice := md.close
				volume := md.volume
				volatility := md.volatility
				ret := md.ret
				row.Sector = &sector
				row.Close = &closePrice
				row.Volume = &volume
				row.Volatility = &volatility
				row.Return = &ret
			} else {
				unmatchedHeadlines++
			}
		} else {
			unmatchedHeadlines++
		}

		merged = append(merged, row)
	}

	droppedMarket := 0
	for _, md := range market {
		if !md.matched {
			droppedMarket++
		}
	}

	m.logger.InfoContext(ctx, "dataset merged",
		slog.Int("merged_count", len(merged)),
		slog.Int("headlines_without_market_data", unmatchedHeadlines),
		slog.Int("market_rows_without_headline", droppedMarket))

	return merged
}

func keyFor(date time.Time, ticker string) (mergeKey, bool) {
	if date.IsZero() {
		return mergeKey{}, false
	}
	return mergeKey{date: date.Unix(), ticker: ticker}, true
}
