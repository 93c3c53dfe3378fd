package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketset/internal/config"
	"marketset/internal/dataset"
	"marketset/internal/fetch"
	"marketset/internal/infrastructure"
)

func main() {
	symbolsFlag := flag.String("symbols", "", "comma-separated symbols, e.g. AAPL,MSFT (required)")
	startFlag := flag.String("start", "", "start date YYYY-MM-DD (required)")
	endFlag := flag.String("end", "", "end date YYYY-MM-DD (required)")
	timeframe := flag.String("timeframe", "1Day", "bar timeframe")
	sectorMapPath := flag.String("sector-map", "", "JSON file mapping symbol to sector")
	outDir := flag.String("out", "", "output directory for raw CSVs (defaults to data/raw relative to executable)")
	flag.Parse()

	if *symbolsFlag == "" || *startFlag == "" || *endFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: fetch-prices -symbols AAPL,MSFT -start 2024-01-01 -end 2024-03-31")
		flag.PrintDefaults()
		os.Exit(2)
	}

	start, err := time.Parse(dataset.DateFormat, *startFlag)
	if err != nil {
		slog.Error("Invalid start date", "value", *startFlag, "error", err)
		os.Exit(2)
	}
	end, err := time.Parse(dataset.DateFormat, *endFlag)
	if err != nil {
		slog.Error("Invalid end date", "value", *endFlag, "error", err)
		os.Exit(2)
	}
	if end.Before(start) {
		slog.Error("End date precedes start date", "start", *startFlag, "end", *endFlag)
		os.Exit(2)
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	pricesCSV := paths.PricesCSV
	returnsCSV := paths.ReturnsCSV
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			slog.Error("Failed to create output directory", "error", err)
			os.Exit(1)
		}
		pricesCSV = filepath.Join(*outDir, "prices.csv")
		returnsCSV = filepath.Join(*outDir, "returns.csv")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = &config.Config{
			Logging: config.LoggingConfig{
				Level:    "info",
				Format:   "json",
				Output:   "both",
				FilePath: paths.GetLogPath("fetch-prices.log"),
			},
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithTraceID(context.Background())
	logger = infrastructure.WithComponent(logger, "fetch-prices")

	symbols := splitSymbols(*symbolsFlag)
	logger.InfoContext(ctx, "Starting price fetch",
		slog.String("symbols", strings.Join(symbols, ",")),
		slog.String("start", *startFlag),
		slog.String("end", *endFlag),
		slog.String("timeframe", *timeframe))

	creds, err := fetch.LoadCredentials(paths.EnvFile)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load credentials", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Without credentials the tool still emits schema-stable header-only
	// outputs so the rest of the pipeline has files to read.
	if !creds.Configured() {
		logger.WarnContext(ctx, "API credentials not configured, writing header-only outputs")
		if err := dataset.WritePrices(pricesCSV, nil); err != nil {
			logger.ErrorContext(ctx, "Failed to write prices CSV", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := dataset.WriteReturns(returnsCSV, nil); err != nil {
			logger.ErrorContext(ctx, "Failed to write returns CSV", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println("Credentials not configured: wrote header-only prices.csv and returns.csv")
		return
	}

	sectors, err := loadSectorMap(*sectorMapPath)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load sector map",
			slog.String("path", *sectorMapPath),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := fetch.NewClient(logger, cfg.Fetch, creds)
	bars, err := client.FetchBars(ctx, symbols, start, end, *timeframe, sectors)
	if err != nil {
		logger.ErrorContext(ctx, "Price fetch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := dataset.WritePrices(pricesCSV, bars); err != nil {
		logger.ErrorContext(ctx, "Failed to write prices CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}
	// Returns are derived downstream by the dataset tool; keep the raw
	// returns file present and schema-stable.
	if err := dataset.WriteReturns(returnsCSV, nil); err != nil {
		logger.ErrorContext(ctx, "Failed to write returns CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Price fetch complete",
		slog.Int("bar_count", len(bars)),
		slog.String("prices_csv", pricesCSV))
	fmt.Printf("Fetched %d bars for %d symbols\n", len(bars), len(symbols))
}

func splitSymbols(value string) []string {
	parts := strings.Split(value, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// loadSectorMap reads a JSON object of symbol to sector name. An empty path
// yields an empty map; symbols without an entry get the Unknown sector.
func loadSectorMap(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sectors := make(map[string]string)
	if err := json.Unmarshal(data, &sectors); err != nil {
		return nil, err
	}
	return sectors, nil
}
