// Package smurfing detects temporal fan-in and fan-out patterns: an account
// that receives from, or sends to, many distinct counterparties within a
// short rolling window. This mirrors the fan-out heuristic in graph-engine's
// pattern library, but runs as an incremental two-pointer scan over a sorted
// transaction slice instead of a windowed Cypher aggregation.
package smurfing

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aegisshield/mule-detection-engine/internal/model"
	"github.com/aegisshield/mule-detection-engine/internal/ringid"
)

// Detector finds fan-in/fan-out rings: a focus account touching at least
// MinDistinctPartners distinct counterparties inside any Window-wide span.
type Detector struct {
	window              time.Duration
	minDistinctPartners int
	logger              *slog.Logger
}

// NewDetector creates a smurfing detector with the given window and
// distinct-partner threshold.
func NewDetector(window time.Duration, minDistinctPartners int, logger *slog.Logger) *Detector {
	return &Detector{window: window, minDistinctPartners: minDistinctPartners, logger: logger}
}

type leg struct {
	partner string
	ts      time.Time
}

// Detect scans every account's incoming legs for fan-in and outgoing legs
// for fan-out, emitting a ring per distinct member set encountered.
func (d *Detector) Detect(transactions []model.Transaction, counter *ringid.Counter) []*model.RawRing {
	incoming := make(map[string][]leg)
	outgoing := make(map[string][]leg)
	focusSet := make(map[string]struct{})

	for _, tx := range transactions {
		incoming[tx.Receiver] = append(incoming[tx.Receiver], leg{partner: tx.Sender, ts: tx.Timestamp})
		outgoing[tx.Sender] = append(outgoing[tx.Sender], leg{partner: tx.Receiver, ts: tx.Timestamp})
		focusSet[tx.Sender] = struct{}{}
		focusSet[tx.Receiver] = struct{}{}
	}

	focus := make([]string, 0, len(focusSet))
	for acc := range focusSet {
		focus = append(focus, acc)
	}
	sort.Strings(focus)

	var rings []*model.RawRing
	seen := make(map[string]bool)

	for _, acc := range focus {
		d.scan(acc, incoming[acc], model.LabelFanInSmurfing, counter, seen, &rings)
		d.scan(acc, outgoing[acc], model.LabelFanOutSmurfing, counter, seen, &rings)
	}

	if d.logger != nil {
		d.logger.Info("smurfing detection complete", "rings_found", len(rings))
	}
	return rings
}

// scan runs the sliding window over one account's legs in one direction,
// maintaining a partner -> occurrence-count frequency map so the distinct
// count updates in O(1) per pointer move rather than being recomputed.
func (d *Detector) scan(
	focus string,
	legs []leg,
	label string,
	counter *ringid.Counter,
	seen map[string]bool,
	rings *[]*model.RawRing,
) {
	if len(legs) < d.minDistinctPartners {
		return
	}

	sorted := append([]leg(nil), legs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ts.Before(sorted[j].ts) })

	freq := make(map[string]int)
	left := 0

	for right := 0; right < len(sorted); right++ {
		freq[sorted[right].partner]++

		for sorted[right].ts.Sub(sorted[left].ts) > d.window {
			freq[sorted[left].partner]--
			if freq[sorted[left].partner] == 0 {
				delete(freq, sorted[left].partner)
			}
			left++
		}

		if len(freq) >= d.minDistinctPartners {
			partners := make([]string, 0, len(freq))
			for partner := range freq {
				partners = append(partners, partner)
			}
			sort.Strings(partners)

			members := make([]string, 0, len(partners)+1)
			members = append(members, focus)
			members = append(members, partners...)

			key := canonicalKey(members)
			if !seen[key] {
				seen[key] = true
				ring := model.NewRawRing(counter.Next(), members, model.PatternSmurfing)
				ring.AddLabelToAll(label)
				*rings = append(*rings, ring)
			}
		}
	}
}

func canonicalKey(members []string) string {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}
