package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"marketset/internal/config"
	"marketset/internal/dataset"
	"marketset/internal/exporter"
	"marketset/internal/features"
	"marketset/internal/infrastructure"
	"marketset/internal/validation"
)

func main() {
	inDir := flag.String("in", "", "input directory with raw CSVs (defaults to data/raw relative to executable)")
	outDir := flag.String("out", "", "output directory for processed CSVs (defaults to data/processed relative to executable)")
	xlsx := flag.Bool("xlsx", false, "also write the merged dataset as an Excel workbook")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if *inDir == "" {
		*inDir = paths.RawDir
	}
	if *outDir == "" {
		*outDir = paths.ProcessedDir
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = &config.Config{
			Logging: config.LoggingConfig{
				Level:    "info",
				Format:   "json",
				Output:   "both",
				FilePath: paths.GetLogPath("dataset.log"),
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
	logger = infrastructure.WithComponent(logger, "dataset")

	logger.InfoContext(ctx, "Starting dataset build",
		slog.String("input_dir", *inDir),
		slog.String("output_dir", *outDir),
		slog.Bool("xlsx", *xlsx))

	pricesCSV := filepath.Join(*inDir, "prices.csv")
	headlinesCSV := filepath.Join(*inDir, "headlines.csv")

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateCSVFile(pricesCSV); err != nil {
		logger.ErrorContext(ctx, "Prices input rejected", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := validator.ValidateCSVFile(headlinesCSV); err != nil {
		logger.ErrorContext(ctx, "Headlines input rejected", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := validator.ValidateOutputDirectory(*outDir); err != nil {
		logger.ErrorContext(ctx, "Output directory rejected", slog.String("error", err.Error()))
		os.Exit(1)
	}

	bars, err := dataset.LoadPrices(pricesCSV)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load prices", slog.String("error", err.Error()))
		os.Exit(1)
	}
	headlines, err := dataset.LoadHeadlines(headlinesCSV)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load headlines", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Raw inputs loaded",
		slog.Int("price_count", len(bars)),
		slog.Int("headline_count", len(headlines)))

	calculator := features.NewCalculator(logger, features.CalculatorConfig{
		Window:      cfg.Calculator.Window,
		TradingDays: cfg.Calculator.TradingDays,
	})
	sortedBars, returns, err := calculator.Compute(ctx, bars)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to compute returns", slog.String("error", err.Error()))
		os.Exit(1)
	}

	scorer := features.NewScorer(features.SentimentConfig{
		PositiveTerms: cfg.Sentiment.PositiveTerms,
		NegativeTerms: cfg.Sentiment.NegativeTerms,
		NegThreshold:  cfg.Sentiment.NegThreshold,
		PosThreshold:  cfg.Sentiment.PosThreshold,
	})
	scored := scorer.AddSentiment(headlines)

	merged := features.NewMerger(logger).Merge(ctx, sortedBars, returns, scored)

	outPrices := filepath.Join(*outDir, "prices.csv")
	outReturns := filepath.Join(*outDir, "returns.csv")
	outMerged := filepath.Join(*outDir, "merged.csv")

	if err := dataset.WritePrices(outPrices, sortedBars); err != nil {
		logger.ErrorContext(ctx, "Failed to write processed prices", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := dataset.WriteReturns(outReturns, returns); err != nil {
		logger.ErrorContext(ctx, "Failed to write processed returns", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := dataset.WriteMerged(outMerged, merged); err != nil {
		logger.ErrorContext(ctx, "Failed to write merged dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *xlsx {
		outXLSX := filepath.Join(*outDir, "merged.xlsx")
		if err := exporter.NewExcelWriter(logger).WriteMergedWorkbook(outXLSX, merged); err != nil {
			logger.ErrorContext(ctx, "Failed to write Excel workbook", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.InfoContext(ctx, "Excel workbook written", slog.String("path", outXLSX))
	}

	logger.InfoContext(ctx, "Dataset build complete",
		slog.Int("price_count", len(sortedBars)),
		slog.Int("return_count", len(returns)),
		slog.Int("merged_count", len(merged)),
		slog.String("merged_csv", outMerged))
	fmt.Printf("Built dataset: %d prices, %d returns, %d merged rows\n",
		len(sortedBars), len(returns), len(merged))
}
