package dataset

import "time"

// Date and timestamp formats used across all dataset files.
const (
	DateFormat      = "2006-01-02"
	TimestampFormat = time.RFC3339
)

// Column schemas, in exact file order. These are an interoperability
// contract with downstream consumers and must not be reordered.
var (
	PriceColumns    = []string{"date", "ticker", "sector", "close", "volume", "volatility"}
	ReturnColumns   = []string{"date", "ticker", "return"}
	HeadlineColumns = []string{"date", "symbol", "headline", "source", "created_at"}
	MergedColumns   = []string{
		"date", "ticker", "headline", "source", "created_at",
		"sentiment_score", "sentiment_bin",
		"sector", "close", "volume", "volatility", "return",
	}
)

// PriceBar is one daily price observation for a ticker. A zero Date means the
// source value was missing or unparseable.
type PriceBar struct {
	Date       time.Time
	Ticker     string
	Sector     string
	Close      float64
	Volume     int64
	Volatility float64
}

// ReturnRow is a derived daily simple return for a ticker.
type ReturnRow struct {
	Date   time.Time
	Ticker string
	Return float64
}

// HeadlineRow is one news headline attributed to a symbol on a date.
// CreatedAt is nil when the source value was missing or unparseable.
// SentimentScore and SentimentBin are derived by the sentiment scorer and are
// zero-valued until then.
type HeadlineRow struct {
	Date           time.Time
	Symbol         string
	Headline       string
	Source         string
	CreatedAt      *time.Time
	SentimentScore float64
	SentimentBin   string
}

// MergedRow joins a headline onto its matching price/return data. The
// price-side fields are nil when no price/return row exists for the
// headline's (date, ticker) key.
type MergedRow struct {
	Date           time.Time
	Ticker         string
	Headline       string
	Source         string
	CreatedAt      *time.Time
	SentimentScore float64
	SentimentBin   string

	Sector     *string
	Close      *float64
	Volume     *int64
	Volatility *float64
	Return     *float64
}
