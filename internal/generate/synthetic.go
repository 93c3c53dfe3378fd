// Package generate produces a deterministic synthetic dataset for running
// the pipeline without vendor credentials: random-walk prices with rolling
// volatility, their daily returns, and templated headlines.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"marketset/internal/dataset"
)

// Config controls the synthetic dataset. Zero fields are replaced by the
// defaults from DefaultConfig.
type Config struct {
	Seed         int64
	Symbols      []string
	Sectors      map[string]string
	Start        time.Time
	Days         int
	DailyMu      float64
	DailySigma   float64
	VolWindow    int
	TradingDays  float64
	HeadlineProb float64
}

// DefaultConfig returns the stock configuration: six large-cap symbols,
// seventy business days from 2024-01-02, and a 35% headline chance per
// symbol per day.
func DefaultConfig() Config {
	return Config{
		Seed:    42,
		Symbols: []string{"AAPL", "MSFT", "GOOG", "AMZN", "META", "NVDA"},
		Sectors: map[string]string{
			"AAPL": "Technology",
			"MSFT": "Technology",
			"GOOG": "Communication Services",
			"AMZN": "Consumer Discretionary",
			"META": "Communication Services",
			"NVDA": "Technology",
		},
		Start:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Days:         70,
		DailyMu:      0.0005,
		DailySigma:   0.02,
		VolWindow:    20,
		TradingDays:  252,
		HeadlineProb: 0.35,
	}
}

var headlineTemplates = []string{
	"%s beats expectations amid strong demand",
	"%s misses guidance as costs rise",
	"Analysts turn optimistic on %s",
	"%s announces share buyback",
	"%s faces regulatory scrutiny",
	"%s unveils new product lineup",
	"%s reports record quarterly revenue",
	"Market remains cautious on %s",
}

var headlineSources = []string{"Reuters", "Bloomberg", "CNBC", "WSJ"}

// Generator builds the synthetic tables from a seeded random source, so
// the same configuration always yields the same dataset.
type Generator struct {
	logger *slog.Logger
	cfg    Config
	rng    *rand.Rand
}

// NewGenerator creates a generator, filling zero config fields from
// DefaultConfig.
func NewGenerator(logger *slog.Logger, cfg Config) *Generator {
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = defaults.Symbols
	}
	if cfg.Sectors == nil {
		cfg.Sectors = defaults.Sectors
	}
	if cfg.Start.IsZero() {
		cfg.Start = defaults.Start
	}
	if cfg.Days <= 0 {
		cfg.Days = defaults.Days
	}
	if cfg.DailySigma == 0 {
		cfg.DailyMu = defaults.DailyMu
		cfg.DailySigma = defaults.DailySigma
	}
	if cfg.VolWindow < 2 {
		cfg.VolWindow = defaults.VolWindow
	}
	if cfg.TradingDays <= 0 {
		cfg.TradingDays = defaults.TradingDays
	}
	if cfg.HeadlineProb <= 0 || cfg.HeadlineProb > 1 {
		cfg.HeadlineProb = defaults.HeadlineProb
	}

	return &Generator{
		logger: logger,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate produces prices, their daily returns, and headlines for the
// configured symbols and date range.
func (g *Generator) Generate(ctx context.Context) ([]dataset.PriceBar, []dataset.ReturnRow, []dataset.HeadlineRow) {
	dates := businessDays(g.cfg.Start, g.cfg.Days)

	var prices []dataset.PriceBar
	var returns []dataset.ReturnRow
	for _, symbol := range g.cfg.Symbols {
		symbolPrices, symbolReturns := g.generateSymbol(symbol, dates)
		prices = append(prices, symbolPrices...)
		returns = append(returns, symbolReturns...)
	}

	headlines := g.generateHeadlines(dates)

	g.logger.InfoContext(ctx, "generated synthetic dataset",
		slog.Int("symbol_count", len(g.cfg.Symbols)),
		slog.Int("price_count", len(prices)),
		slog.Int("return_count", len(returns)),
		slog.Int("headline_count", len(headlines)))

	return prices, returns, headlines
}

// generateSymbol walks a single symbol's close series and derives its
// returns and rolling volatility estimate.
func (g *Generator) generateSymbol(symbol string, dates []time.Time) ([]dataset.PriceBar, []dataset.ReturnRow) {
	closes := make([]float64, len(dates))
	closes[0] = 50.0 + g.rng.Float64()*250.0
	for i := 1; i < len(dates); i++ {
		r := g.rng.NormFloat64()*g.cfg.DailySigma + g.cfg.DailyMu
		closes[i] = closes[i-1] * (1.0 + r)
	}

	rets := make([]float64, len(dates)-1)
	for i := 1; i < len(closes); i++ {
		rets[i-1] = closes[i]/closes[i-1] - 1.0
	}

	annualize := math.Sqrt(g.cfg.TradingDays)
	vols := make([]float64, len(dates))
	for i := range dates {
		switch {
		case i == 0:
			vols[i] = g.cfg.DailySigma * annualize
		default:
			start := i - g.cfg.VolWindow
			if start < 0 {
				start = 0
			}
			window := rets[start:i]
			sigma := g.cfg.DailySigma
			if len(window) > 1 {
				sigma = stdDev(window)
			}
			vols[i] = sigma * annualize
		}
	}

	sector, ok := g.cfg.Sectors[symbol]
	if !ok {
		sector = "Unknown"
	}

	bars := make([]dataset.PriceBar, len(dates))
	for i, d := range dates {
		bars[i] = dataset.PriceBar{
			Date:       d,
			Ticker:     symbol,
			Sector:     sector,
			Close:      round(closes[i], 4),
			Volume:     int64(math.Exp(g.rng.NormFloat64()*0.6 + 12.0)),
			Volatility: round(vols[i], 6),
		}
	}

	returnRows := make([]dataset.ReturnRow, len(rets))
	for i := range rets {
		returnRows[i] = dataset.ReturnRow{
			Date:   dates[i+1],
			Ticker: symbol,
			Return: bars[i+1].Close/bars[i].Close - 1.0,
		}
	}

	return bars, returnRows
}

// generateHeadlines emits a templated headline per symbol per day with the
// configured probability, timestamped at the 09:30 UTC open.
func (g *Generator) generateHeadlines(dates []time.Time) []dataset.HeadlineRow {
	var rows []dataset.HeadlineRow
	for _, d := range dates {
		for _, symbol := range g.cfg.Symbols {
			if g.rng.Float64() >= g.cfg.HeadlineProb {
				continue
			}
			template := headlineTemplates[g.rng.Intn(len(headlineTemplates))]
			source := headlineSources[g.rng.Intn(len(headlineSources))]
			createdAt := time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, time.UTC)
			rows = append(rows, dataset.HeadlineRow{
				Date:      d,
				Symbol:    symbol,
				Headline:  fmt.Sprintf(template, symbol),
				Source:    source,
				CreatedAt: &createdAt,
			})
		}
	}
	return rows
}

// businessDays returns n consecutive weekdays starting at or after start.
func businessDays(start time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for len(days) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return days
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSquared float64
	for _, v := range values {
		diff := v - mean
		sumSquared += diff * diff
	}
	return math.Sqrt(sumSquared / float64(len(values)))
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
