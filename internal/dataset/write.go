package dataset

import (
	"strconv"
	"time"
)

// WritePrices writes price bars to a CSV file with the exact prices schema.
func WritePrices(path string, bars []PriceBar) error {
	records := make([][]string, 0, len(bars))
	for _, b := range bars {
		records = append(records, []string{
			formatDate(b.Date),
			b.Ticker,
			b.Sector,
			formatFloat(b.Close),
			strconv.FormatInt(b.Volume, 10),
			formatFloat(b.Volatility),
		})
	}
	return WriteCSV(path, PriceColumns, records)
}

// WriteReturns writes return rows to a CSV file with the exact returns schema.
func WriteReturns(path string, rows []ReturnRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			formatDate(r.Date),
			r.Ticker,
			formatFloat(r.Return),
		})
	}
	return WriteCSV(path, ReturnColumns, records)
}

// WriteHeadlines writes headline rows to a CSV file with the exact headlines
// schema. Derived sentiment fields are not part of this file; they appear in
// the merged dataset.
func WriteHeadlines(path string, rows []HeadlineRow) error {
	records := make([][]string, 0, len(rows))
	for _, h := range rows {
		records = append(records, []string{
			formatDate(h.Date),
			h.Symbol,
			h.Headline,
			h.Source,
			formatTimestamp(h.CreatedAt),
		})
	}
	return WriteCSV(path, HeadlineColumns, records)
}

// WriteMerged writes merged rows to a CSV file. Null price-side fields
// serialize as empty cells.
func WriteMerged(path string, rows []MergedRow) error {
	records := make([][]string, 0, len(rows))
	for _, m := range rows {
		records = append(records, []string{
			formatDate(m.Date),
			m.Ticker,
			m.Headline,
			m.Source,
			formatTimestamp(m.CreatedAt),
			formatFloat(m.SentimentScore),
			m.SentimentBin,
			stringOrEmpty(m.Sector),
			floatOrEmpty(m.Close),
			intOrEmpty(m.Volume),
			floatOrEmpty(m.Volatility),
			floatOrEmpty(m.Return),
		})
	}
	return WriteCSV(path, MergedColumns, records)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateFormat)
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(TimestampFormat)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func intOrEmpty(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}
