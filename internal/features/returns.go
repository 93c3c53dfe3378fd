package features

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"marketset/internal/dataset"
)

// CalculatorConfig holds configuration options for the Calculator.
type CalculatorConfig struct {
	// Window is the trailing number of returns in the rolling volatility
	// estimate.
	Window int
	// TradingDays is the annualization basis; daily volatility is scaled by
	// sqrt(TradingDays).
	TradingDays int
}

// DefaultCalculatorConfig returns the standard 20-day window annualized over
// 252 trading days.
func DefaultCalculatorConfig() CalculatorConfig {
	return CalculatorConfig{Window: 20, TradingDays: 252}
}

// Calculator derives daily simple returns and trailing-window annualized
// volatility from price bars, per ticker.
type Calculator struct {
	logger        *slog.Logger
	window        int
	annualization float64
}

// NewCalculator creates a new return/volatility calculator with the given
// configuration.
func NewCalculator(logger *slog.Logger, config CalculatorConfig) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Window < 2 {
		config.Window = 20
	}
	if config.TradingDays <= 0 {
		config.TradingDays = 252
	}

	return &Calculator{
		logger:        logger,
		window:        config.Window,
		annualization: math.Sqrt(float64(config.TradingDays)),
	}
}

// Compute sorts bars by (ticker, date), then derives per-ticker returns and
// volatility. It returns the bars with their volatility column replaced and
// the return rows, dropping each ticker's first observation (its return is
// undefined).
//
// Returns and volatility are defined relative to the previous row of the same
// ticker, never the previous row of the table, so the (ticker, date) ordering
// is established before any windowed work. Input bars are not mutated.
func (c *Calculator) Compute(ctx context.Context, bars []dataset.PriceBar) ([]dataset.PriceBar, []dataset.ReturnRow, error) {
	c.logger.InfoContext(ctx, "computing returns and volatility",
		slog.Int("bar_count", len(bars)),
		slog.Int("window", c.window))

	if len(bars) == 0 {
		return []dataset.PriceBar{}, []dataset.ReturnRow{}, nil
	}

	sorted := make([]dataset.PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Ticker != sorted[j].Ticker {
			return sorted[i].Ticker < sorted[j].Ticker
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var returnRows []dataset.ReturnRow
	tickerCount := 0

	// Walk contiguous ticker runs of the sorted slice.
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].Ticker == sorted[start].Ticker {
			end++
		}
		tickerCount++

		group := sorted[start:end]
		returns := c.computeGroupReturns(group)
		c.fillGroupVolatility(group, returns)

		for i, ret := range returns {
			returnRows = append(returnRows, dataset.ReturnRow{
				Date:   group[i+1].Date,
				Ticker: group[i+1].Ticker,
				Return: ret,
			})
		}

		start = end
	}

	if returnRows == nil {
		returnRows = []dataset.ReturnRow{}
	}

	c.logger.InfoContext(ctx, "returns and volatility computed",
		slog.Int("ticker_count", tickerCount),
		slog.Int("return_count", len(returnRows)))

	return sorted, returnRows, nil
}

// computeGroupReturns derives simple returns for one ticker's date-ordered
// bars: returns[i-1] = close[i]/close[i-1] - 1. A group with fewer than two
// bars has no defined returns.
func (c *Calculator) computeGroupReturns(group []dataset.PriceBar) []float64 {
	if len(group) < 2 {
		return nil
	}
	returns := make([]float64, len(group)-1)
	for i := 1; i < len(group); i++ {
		returns[i-1] = group[i].Close/group[i-1].Close - 1
	}
	return returns
}

// fillGroupVolatility replaces the volatility column of one ticker's bars.
// Bar i sees the returns up to and including its own; the estimate is the
// population standard deviation of the most recent window of those returns,
// annualized, and is defined once at least two returns exist. Undefined
// leading values are back-filled from the nearest later defined value, then
// zero-filled, so every bar ends up with a numeric volatility.
func (c *Calculator) fillGroupVolatility(group []dataset.PriceBar, returns []float64) {
	defined := make([]bool, len(group))

	for i := range group {
		available := returns[:min(i, len(returns))]
		if len(available) < 2 {
			continue
		}
		window := available
		if len(window) > c.window {
			window = window[len(window)-c.window:]
		}
		group[i].Volatility = stdDev(window) * c.annualization
		defined[i] = true
	}

	next := 0.0
	hasNext := false
	for i := len(group) - 1; i >= 0; i-- {
		if defined[i] {
			next = group[i].Volatility
			hasNext = true
			continue
		}
		if hasNext {
			group[i].Volatility = next
		} else {
			group[i].Volatility = 0.0
		}
	}
}

// stdDev computes the population standard deviation.
func stdDev(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	sumSquared := 0.0
	for _, v := range values {
		sumSquared += (v - mean) * (v - mean)
	}
	return math.Sqrt(sumSquared / float64(len(values)))
}
