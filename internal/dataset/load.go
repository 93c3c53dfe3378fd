package dataset

import (
	"fmt"
	"strconv"
	"time"

	"marketset/internal/errors"
)

// LoadPrices reads and validates a prices CSV. The required schema is
// checked before any row is parsed so a malformed dataset fails fast with
// the offending column names.
func LoadPrices(path string) ([]PriceBar, error) {
	table, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	if table.Empty() {
		return []PriceBar{}, nil
	}
	if err := ValidateColumns(table.Columns, PriceColumns, false); err != nil {
		return nil, err
	}

	idx := table.ColumnIndex()
	bars := make([]PriceBar, 0, len(table.Rows))
	for i, row := range table.Rows {
		closePrice, err := parseFloat(row[idx["close"]], path, i, "close")
		if err != nil {
			return nil, err
		}
		volume, err := parseInt(row[idx["volume"]], path, i, "volume")
		if err != nil {
			return nil, err
		}
		volatility, err := parseFloat(row[idx["volatility"]], path, i, "volatility")
		if err != nil {
			return nil, err
		}

		bars = append(bars, PriceBar{
			Date:       parseDate(row[idx["date"]]),
			Ticker:     row[idx["ticker"]],
			Sector:     row[idx["sector"]],
			Close:      closePrice,
			Volume:     volume,
			Volatility: volatility,
		})
	}

	return bars, nil
}

// LoadReturns reads and validates a returns CSV.
func LoadReturns(path string) ([]ReturnRow, error) {
	table, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	if table.Empty() {
		return []ReturnRow{}, nil
	}
	if err := ValidateColumns(table.Columns, ReturnColumns, false); err != nil {
		return nil, err
	}

	idx := table.ColumnIndex()
	rows := make([]ReturnRow, 0, len(table.Rows))
	for i, row := range table.Rows {
		ret, err := parseFloat(row[idx["return"]], path, i, "return")
		if err != nil {
			return nil, err
		}
		rows = append(rows, ReturnRow{
			Date:   parseDate(row[idx["date"]]),
			Ticker: row[idx["ticker"]],
			Return: ret,
		})
	}

	return rows, nil
}

// LoadHeadlines reads and validates a headlines CSV. Only date, symbol and
// headline are required; source and created_at are optional in the input.
func LoadHeadlines(path string) ([]HeadlineRow, error) {
	table, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	if table.Empty() {
		return []HeadlineRow{}, nil
	}
	if err := ValidateColumns(table.Columns, []string{"date", "symbol", "headline"}, false); err != nil {
		return nil, err
	}

	idx := table.ColumnIndex()
	rows := make([]HeadlineRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		h := HeadlineRow{
			Date:     parseDate(row[idx["date"]]),
			Symbol:   row[idx["symbol"]],
			Headline: row[idx["headline"]],
		}
		if col, ok := idx["source"]; ok {
			h.Source = row[col]
		}
		if col, ok := idx["created_at"]; ok {
			h.CreatedAt = parseTimestamp(row[col])
		}
		rows = append(rows, h)
	}

	return rows, nil
}

// parseDate parses a calendar date. Missing or unparseable values become the
// zero time (null), never an error.
func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateFormat, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseTimestamp parses an RFC 3339 timestamp, falling back to a bare date.
// Missing or unparseable values become nil (null), never an error.
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(TimestampFormat, value); err == nil {
		return &t
	}
	if t, err := time.Parse(DateFormat, value); err == nil {
		return &t
	}
	return nil
}

func parseFloat(value, path string, row int, column string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.NewParsingError(
			fmt.Sprintf("row %d: invalid %s value %q", row+1, column, value), err).
			WithContext("path", path)
	}
	return f, nil
}

func parseInt(value, path string, row int, column string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.NewParsingError(
			fmt.Sprintf("row %d: invalid %s value %q", row+1, column, value), err).
			WithContext("path", path)
	}
	return n, nil
}
