// Package scoring fuses detected rings with the auxiliary velocity,
// centrality, and merchant signals into a per-account suspicion score and
// a per-ring risk score. This is the engine's equivalent of graph-engine's
// risk-score aggregation in patterns/detector.go, generalized from a
// single-pattern confidence weight to the spec's additive, clamped model.
package scoring

import (
	"log/slog"
	"math"
	"sort"

	"github.com/aegisshield/mule-detection-engine/internal/config"
	"github.com/aegisshield/mule-detection-engine/internal/model"
)

// Engine turns raw rings plus auxiliary signals into final account scores
// and ring risk scores.
type Engine struct {
	cfg    config.ScoringConfig
	logger *slog.Logger
}

// NewEngine creates a scoring engine bound to the given scoring config.
func NewEngine(cfg config.ScoringConfig, logger *slog.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

func (e *Engine) patternDelta(pt model.PatternType) float64 {
	switch pt {
	case model.PatternCycle:
		return e.cfg.CycleDelta
	case model.PatternSmurfing:
		return e.cfg.SmurfingDelta
	case model.PatternLayeredShell:
		return e.cfg.LayeredShellDelta
	case model.PatternHybrid:
		return e.cfg.HybridDelta()
	default:
		return 0
	}
}

// ScoreAccounts computes the per-account score map described in spec
// section 4.6. Rings must already be in the fixed detector order
// (cycles, then smurfing, then shells) so that "first ring" assignment is
// deterministic. Accounts never touched by any ring are absent from the
// returned map even if an auxiliary signal would otherwise apply to them.
func (e *Engine) ScoreAccounts(
	rings []*model.RawRing,
	velocitySet, centralitySet, merchantSet map[string]struct{},
) map[string]*model.AccountScore {
	scores := make(map[string]*model.AccountScore)

	for _, ring := range rings {
		delta := e.patternDelta(ring.PatternType)
		for _, member := range ring.MemberAccounts {
			acc, ok := scores[member]
			if !ok {
				acc = &model.AccountScore{
					AccountID: member,
					Labels:    make(map[string]struct{}),
					FirstRing: ring.RingID,
				}
				scores[member] = acc
			}
			acc.Score += delta
			for label := range ring.PatternsByAccount[member] {
				acc.Labels[label] = struct{}{}
			}
		}
	}

	for member, acc := range scores {
		if _, ok := velocitySet[member]; ok {
			acc.Score += e.cfg.VelocityDelta
			acc.Labels[model.LabelHighVelocity] = struct{}{}
		}
		if _, ok := centralitySet[member]; ok {
			acc.Score += e.cfg.CentralityDelta
			acc.Labels[model.LabelDegreeCentralityAnomaly] = struct{}{}
		}
		if _, ok := merchantSet[member]; ok {
			acc.Score += e.cfg.MerchantDelta
			acc.Labels[model.LabelMerchantFPReduction] = struct{}{}
		}
	}

	for _, acc := range scores {
		acc.Score = clampRound(acc.Score, e.cfg.ClampMin, e.cfg.ClampMax)
	}

	if e.logger != nil {
		e.logger.Info("account scoring complete", "accounts_scored", len(scores))
	}
	return scores
}

// RingRiskScore computes a ring's risk score as the mean of its members'
// final, clamped, rounded scores, clamped and rounded again per spec 4.6.
func (e *Engine) RingRiskScore(members []string, scores map[string]*model.AccountScore) float64 {
	if len(members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range members {
		if acc, ok := scores[m]; ok {
			sum += acc.Score
		}
	}
	mean := sum / float64(len(members))
	return clampRound(mean, e.cfg.ClampMin, e.cfg.ClampMax)
}

// clampRound clamps v to [lo, hi] and rounds to one decimal place.
func clampRound(v, lo, hi float64) float64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return math.Round(v*10) / 10
}

// SortedLabels returns an account's labels sorted ascending, for rendering
// into the report's detected_patterns field.
func SortedLabels(labels map[string]struct{}) []string {
	out := make([]string, 0, len(labels))
	for l := range labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
