// Package engine wires the pipeline stages described in spec section 2
// into one Analyze call: build the graph, run the three ring detectors in
// their fixed order, run the three auxiliary analyzers, score every
// account, and assemble the final report. This plays the role
// graph-engine's internal/engine/engine.go plays as the service's top-level
// orchestrator, minus the Neo4j/gRPC transport it wraps around that role.
package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aegisshield/mule-detection-engine/internal/centrality"
	"github.com/aegisshield/mule-detection-engine/internal/config"
	"github.com/aegisshield/mule-detection-engine/internal/cycles"
	"github.com/aegisshield/mule-detection-engine/internal/graphmodel"
	"github.com/aegisshield/mule-detection-engine/internal/merchant"
	"github.com/aegisshield/mule-detection-engine/internal/metrics"
	"github.com/aegisshield/mule-detection-engine/internal/model"
	"github.com/aegisshield/mule-detection-engine/internal/report"
	"github.com/aegisshield/mule-detection-engine/internal/ringid"
	"github.com/aegisshield/mule-detection-engine/internal/scoring"
	"github.com/aegisshield/mule-detection-engine/internal/shell"
	"github.com/aegisshield/mule-detection-engine/internal/smurfing"
	"github.com/aegisshield/mule-detection-engine/internal/velocity"
)

// Engine is the top-level pipeline orchestrator. It is stateless across
// calls: each Analyze builds its own graph, counters, and score maps, and
// nothing is retained once a report is returned, per spec section 5.
type Engine struct {
	cfg    config.Config
	logger *slog.Logger
	stats  *metrics.Collector

	cycleDetector      *cycles.Detector
	smurfingDetector   *smurfing.Detector
	shellDetector      *shell.Detector
	velocityAnalyzer   *velocity.Analyzer
	centralityAnalyzer *centrality.Analyzer
	merchantClassifier *merchant.Classifier
	scorer             *scoring.Engine
	assembler          *report.Assembler
}

// New wires one Engine from cfg. stats may be nil to disable metrics.
func New(cfg config.Config, logger *slog.Logger, stats *metrics.Collector) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	scorer := scoring.NewEngine(cfg.Scoring, logger)
	return &Engine{
		cfg:                cfg,
		logger:             logger,
		stats:              stats,
		cycleDetector:      cycles.NewDetector(cfg.Cycle.MinLength, cfg.Cycle.MaxLength, logger),
		smurfingDetector:   smurfing.NewDetector(cfg.Smurfing.Window, cfg.Smurfing.MinDistinctPartners, logger),
		shellDetector:      shell.NewDetector(cfg.Shell.MinHops, cfg.Shell.MaxHops, cfg.Shell.MaxInteriorDegree, logger),
		velocityAnalyzer:   velocity.NewAnalyzer(cfg.Velocity.Window, cfg.Velocity.MinTransactions, logger),
		centralityAnalyzer: centrality.NewAnalyzer(cfg.Centrality.TopFraction, logger),
		merchantClassifier: merchant.NewClassifier(cfg.Merchant.MinLifetime, cfg.Merchant.MaxAmountCV, cfg.Merchant.MaxInterArrivalCV, logger),
		scorer:             scorer,
		assembler:          report.NewAssembler(scorer),
	}
}

// AnalyzeOptions controls what the report carries beyond the mandatory
// fields; IncludeTransactions mirrors the optional `transactions` array
// from spec section 6.
type AnalyzeOptions struct {
	IncludeTransactions bool
}

// Analyze runs the full pipeline over transactions and returns the
// assembled report. It never mutates its input and never blocks on I/O,
// per spec section 5.
func (e *Engine) Analyze(transactions []model.Transaction, opts AnalyzeOptions) (*model.Report, error) {
	start := time.Now()
	runID := uuid.New().String()
	log := e.logger.With("run_id", runID)
	log.Info("analysis starting", "transaction_count", len(transactions))

	stageStart := time.Now()
	g, degrees, err := graphmodel.Build(transactions)
	if err != nil {
		return nil, err
	}
	e.stats.ObserveStage("graph_build", time.Since(stageStart))
	log.Info("graph built", "accounts", len(g.Nodes()))

	counter := ringid.NewCounter(e.cfg.RingIDPrefix)

	stageStart = time.Now()
	cycleRings := e.cycleDetector.Detect(g, counter)
	e.stats.ObserveStage("cycle_detect", time.Since(stageStart))
	e.stats.AddRings(string(model.PatternCycle), len(cycleRings))

	stageStart = time.Now()
	smurfingRings := e.smurfingDetector.Detect(transactions, counter)
	e.stats.ObserveStage("smurfing_detect", time.Since(stageStart))
	e.stats.AddRings(string(model.PatternSmurfing), len(smurfingRings))

	stageStart = time.Now()
	shellRings := e.shellDetector.Detect(g, degrees, counter)
	e.stats.ObserveStage("shell_detect", time.Since(stageStart))
	e.stats.AddRings(string(model.PatternLayeredShell), len(shellRings))

	allRings := make([]*model.RawRing, 0, len(cycleRings)+len(smurfingRings)+len(shellRings))
	allRings = append(allRings, cycleRings...)
	allRings = append(allRings, smurfingRings...)
	allRings = append(allRings, shellRings...)

	stageStart = time.Now()
	velocitySet := e.velocityAnalyzer.Analyze(transactions)
	centralitySet := e.centralityAnalyzer.Analyze(g)
	merchantSet := e.merchantClassifier.Classify(transactions)
	e.stats.ObserveStage("auxiliary_signals", time.Since(stageStart))

	stageStart = time.Now()
	scores := e.scorer.ScoreAccounts(allRings, velocitySet, centralitySet, merchantSet)
	e.stats.ObserveStage("scoring", time.Since(stageStart))
	e.stats.AddAccountsScored(len(scores))

	assemblyStart := time.Now()
	processingTime := time.Since(start).Seconds()
	rep := e.assembler.Assemble(len(g.Nodes()), allRings, scores, roundSeconds(processingTime))
	e.stats.ObserveAssembly(time.Since(assemblyStart))

	if opts.IncludeTransactions {
		rep.Transactions = transactions
	}

	e.stats.IncAnalyses()
	log.Info("analysis complete",
		"suspicious_accounts", rep.Summary.SuspiciousAccountsFlagged,
		"fraud_rings", rep.Summary.FraudRingsDetected,
		"processing_time_seconds", rep.Summary.ProcessingTimeSeconds,
	)

	return rep, nil
}

// roundSeconds rounds a duration-in-seconds value to three decimal places,
// per the output contract in spec section 6.
func roundSeconds(s float64) float64 {
	return float64(int64(s*1000+0.5)) / 1000
}
