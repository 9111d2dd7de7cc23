// Command muledetect is the minimal batch host for the mule-detection
// engine: it reads a validated transaction CSV, runs one analysis, and
// writes the JSON report to stdout. HTTP/gRPC transport, multipart
// upload, and file-format sniffing are explicitly out of scope per spec
// section 1 and stay the responsibility of a wrapping service; this is
// only the thin entrypoint the core needs to be runnable end to end.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aegisshield/mule-detection-engine/internal/config"
	"github.com/aegisshield/mule-detection-engine/internal/engine"
	"github.com/aegisshield/mule-detection-engine/internal/ingest"
	"github.com/aegisshield/mule-detection-engine/internal/metrics"
)

func main() {
	inputPath := flag.String("input", "", "path to the transaction CSV file")
	includeTransactions := flag.Bool("include-transactions", false, "include the input transactions in the report")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *inputPath == "" {
		logger.Error("missing required -input flag")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *inputPath, *includeTransactions, cfg, logger); err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, inputPath string, includeTransactions bool, cfg *config.Config, logger *slog.Logger) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	transactions, err := ingest.ReadCSV(file)
	if err != nil {
		return fmt.Errorf("failed to ingest transactions: %w", err)
	}

	collector := metrics.NewCollector(prometheus.NewRegistry())
	pipeline := engine.New(*cfg, logger, collector)

	select {
	case <-ctx.Done():
		return fmt.Errorf("analysis cancelled before it started: %w", ctx.Err())
	default:
	}

	report, err := pipeline.Analyze(transactions, engine.AnalyzeOptions{IncludeTransactions: includeTransactions})
	if err != nil {
		return fmt.Errorf("failed to run analysis: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
