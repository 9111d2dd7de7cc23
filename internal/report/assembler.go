// Package report assembles the final output contract from scored rings
// and accounts: deduplicating rings by member set, ordering accounts by
// score, and filling in the summary counts. This plays the role
// graph-engine's DetectionResult builder plays for PatternDetector.
package report

import (
	"sort"
	"strings"

	"github.com/aegisshield/mule-detection-engine/internal/model"
	"github.com/aegisshield/mule-detection-engine/internal/scoring"
)

// Assembler builds a model.Report from the pipeline's intermediate state.
type Assembler struct {
	scorer *scoring.Engine
}

// NewAssembler creates a report assembler bound to the given scoring
// engine, used for per-ring risk scores.
func NewAssembler(scorer *scoring.Engine) *Assembler {
	return &Assembler{scorer: scorer}
}

// Assemble deduplicates rings by member set (first occurrence wins),
// scores each surviving ring, builds the suspicious-accounts list sorted
// descending by score with a lexicographic account-id tie-break, and
// fills in the summary counts. processingTime is supplied by the caller,
// since measuring it is the host's responsibility per spec section 8.
func (a *Assembler) Assemble(
	totalAccounts int,
	rings []*model.RawRing,
	scores map[string]*model.AccountScore,
	processingTime float64,
) *model.Report {
	dedupedRings := dedupeRings(rings)

	fraudRings := make([]model.FraudRing, 0, len(dedupedRings))
	for _, ring := range dedupedRings {
		fraudRings = append(fraudRings, model.FraudRing{
			RingID:         ring.RingID,
			MemberAccounts: ring.MemberAccounts,
			PatternType:    string(ring.PatternType),
			RiskScore:      a.scorer.RingRiskScore(ring.MemberAccounts, scores),
			MemberCount:    len(ring.MemberAccounts),
		})
	}

	suspicious := make([]model.SuspiciousAccount, 0, len(scores))
	for accountID, acc := range scores {
		var ringID *string
		if acc.FirstRing != "" {
			id := acc.FirstRing
			ringID = &id
		}
		suspicious = append(suspicious, model.SuspiciousAccount{
			AccountID:        accountID,
			SuspicionScore:   acc.Score,
			DetectedPatterns: scoring.SortedLabels(acc.Labels),
			RingID:           ringID,
		})
	}

	sort.Slice(suspicious, func(i, j int) bool {
		if suspicious[i].SuspicionScore != suspicious[j].SuspicionScore {
			return suspicious[i].SuspicionScore > suspicious[j].SuspicionScore
		}
		return suspicious[i].AccountID < suspicious[j].AccountID
	})

	return &model.Report{
		SuspiciousAccounts: suspicious,
		FraudRings:         fraudRings,
		Summary: model.Summary{
			TotalAccountsAnalyzed:     totalAccounts,
			SuspiciousAccountsFlagged: len(suspicious),
			FraudRingsDetected:        len(fraudRings),
			ProcessingTimeSeconds:     processingTime,
		},
	}
}

// dedupeRings keeps the first ring seen for each distinct member set,
// preserving input order so ring_id and pattern_type are decided by
// whichever detector emitted that member set first (spec section 4.8).
func dedupeRings(rings []*model.RawRing) []*model.RawRing {
	seen := make(map[string]bool, len(rings))
	out := make([]*model.RawRing, 0, len(rings))
	for _, ring := range rings {
		key := memberSetKey(ring.MemberAccounts)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ring)
	}
	return out
}

func memberSetKey(members []string) string {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}
