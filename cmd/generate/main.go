package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"marketset/internal/config"
	"marketset/internal/dataset"
	"marketset/internal/generate"
	"marketset/internal/infrastructure"
)

func main() {
	seed := flag.Int64("seed", 42, "random seed")
	days := flag.Int("days", 70, "number of business days to generate")
	startFlag := flag.String("start", "2024-01-02", "first date YYYY-MM-DD (advanced to the next weekday if needed)")
	outDir := flag.String("out", "", "output directory for raw CSVs (defaults to data/raw relative to executable)")
	flag.Parse()

	start, err := time.Parse(dataset.DateFormat, *startFlag)
	if err != nil {
		slog.Error("Invalid start date", "value", *startFlag, "error", err)
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
	headlinesCSV := paths.HeadlinesCSV
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			slog.Error("Failed to create output directory", "error", err)
			os.Exit(1)
		}
		pricesCSV = filepath.Join(*outDir, "prices.csv")
		returnsCSV = filepath.Join(*outDir, "returns.csv")
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
				FilePath: paths.GetLogPath("generate.log"),
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
	logger = infrastructure.WithComponent(logger, "generate")

	logger.InfoContext(ctx, "Generating synthetic dataset",
		slog.Int64("seed", *seed),
		slog.Int("days", *days),
		slog.String("start", *startFlag))

	genCfg := generate.DefaultConfig()
	genCfg.Seed = *seed
	genCfg.Days = *days
	genCfg.Start = start

	prices, returns, headlines := generate.NewGenerator(logger, genCfg).Generate(ctx)

	if err := dataset.WritePrices(pricesCSV, prices); err != nil {
		logger.ErrorContext(ctx, "Failed to write prices CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := dataset.WriteReturns(returnsCSV, returns); err != nil {
		logger.ErrorContext(ctx, "Failed to write returns CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := dataset.WriteHeadlines(headlinesCSV, headlines); err != nil {
		logger.ErrorContext(ctx, "Failed to write headlines CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Synthetic dataset written",
		slog.String("prices_csv", pricesCSV),
		slog.String("returns_csv", returnsCSV),
		slog.String("headlines_csv", headlinesCSV))
	fmt.Printf("Generated %d bars, %d returns, %d headlines\n", len(prices), len(returns), len(headlines))
}
