package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/siherrmann/timeliner"
	"github.com/siherrmann/timeliner/core/corpus"
	"github.com/siherrmann/timeliner/core/pipeline"
	"github.com/siherrmann/timeliner/helper"
)

func main() {
	input := flag.String("input", "labelled_data.json", "Path to the labelled corpus (JSON array)")
	output := flag.String("output", "data", "Directory for the converted split")
	name := flag.String("name", "train", "Split name, written as {name}.json and pretty_{name}.json")
	workers := flag.Int("workers", 0, "Documents formatted concurrently (0: number of CPUs)")
	numDocs := flag.Int("num-docs", 0, "Convert only the first N documents (0: all)")
	docIDs := flag.String("doc-ids", "", "Comma separated document ids to convert")
	store := flag.Bool("store", false, "Store accepted examples in Postgres (TIMELINER_DB_* variables)")
	envFile := flag.String("env", ".env", "Path to environment file")
	metricsFile := flag.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := helper.NewLogger(os.Stdout, level)

	if err := godotenv.Load(*envFile); err != nil {
		logger.Debug("Could not load env file", slog.String("path", *envFile), slog.String("error", err.Error()))
	}

	registry := prometheus.NewRegistry()
	t := timeliner.NewTimeliner(
		logger,
		pipeline.WithWorkers(*workers),
		pipeline.WithMetrics(pipeline.NewMetrics(registry)),
	)
	defer t.Close()

	if *store {
		config, err := helper.NewDatabaseConfiguration()
		if err != nil {
			logger.Error("Invalid database configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := t.ConnectStore(config); err != nil {
			logger.Error("Failed to connect example store", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	opts := corpus.ReadOptions{NumDocs: *numDocs}
	if *docIDs != "" {
		opts.DocIDs = strings.Split(*docIDs, ",")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := t.Convert(ctx, *input, *output, *name, opts)
	if err != nil {
		logger.Error("Conversion failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, registry); err != nil {
			logger.Error("Failed to write metrics", slog.String("path", *metricsFile), slog.String("error", err.Error()))
		}
	}

	fmt.Printf("Accepted %d of %d documents (%d skipped, %d rejected, %d without templates)\n",
		report.Accepted, report.Read, len(report.Skipped), len(report.Rejected), len(report.Filtered))
}
