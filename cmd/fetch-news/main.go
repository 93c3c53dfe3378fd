package main

import (
	"context"
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
	limit := flag.Int("limit", 1000, "maximum number of headline rows")
	outDir := flag.String("out", "", "output directory for the headlines CSV (defaults to data/raw relative to executable)")
	flag.Parse()

	if *symbolsFlag == "" || *startFlag == "" || *endFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: fetch-news -symbols AAPL,MSFT -start 2024-01-01 -end 2024-03-31")
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

	headlinesCSV := paths.HeadlinesCSV
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			slog.Error("Failed to create output directory", "error", err)
			os.Exit(1)
		}
		headlinesCSV = filepath.Join(*outDir, "headlines.csv")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = &config.Config{
			Logging: config.LoggingConfig{
				Level:    "info",
				Format:   "json",
				Output:   "both",
				FilePath: paths.GetLogPath("fetch-news.log"),
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
	logger = infrastructure.WithComponent(logger, "fetch-news")

	symbols := splitSymbols(*symbolsFlag)
	logger.InfoContext(ctx, "Starting news fetch",
		slog.String("symbols", strings.Join(symbols, ",")),
		slog.String("start", *startFlag),
		slog.String("end", *endFlag),
		slog.Int("limit", *limit))

	creds, err := fetch.LoadCredentials(paths.EnvFile)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load credentials", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if !creds.Configured() {
		logger.WarnContext(ctx, "API credentials not configured, writing header-only output")
		if err := dataset.WriteHeadlines(headlinesCSV, nil); err != nil {
			logger.ErrorContext(ctx, "Failed to write headlines CSV", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println("Credentials not configured: wrote header-only headlines.csv")
		return
	}

	client := fetch.NewClient(logger, cfg.Fetch, creds)
	rows, err := client.FetchNews(ctx, symbols, start, end, *limit)
	if err != nil {
		logger.ErrorContext(ctx, "News fetch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := dataset.WriteHeadlines(headlinesCSV, rows); err != nil {
		logger.ErrorContext(ctx, "Failed to write headlines CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "News fetch complete",
		slog.Int("headline_count", len(rows)),
		slog.String("headlines_csv", headlinesCSV))
	fmt.Printf("Fetched %d headlines for %d symbols\n", len(rows), len(symbols))
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
