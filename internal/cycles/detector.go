// Package cycles enumerates simple directed cycles of bounded length,
// emitting one ring per distinct member set. This is the mule-detection
// analog of graph-engine's detectCircularFlowPattern, but run in-process
// over the aggregated graph rather than issuing a variable-length Cypher
// MATCH.
package cycles

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/aegisshield/mule-detection-engine/internal/graphmodel"
	"github.com/aegisshield/mule-detection-engine/internal/model"
	"github.com/aegisshield/mule-detection-engine/internal/ringid"
)

// Detector enumerates simple directed cycles with length in [MinLength, MaxLength].
type Detector struct {
	minLength int
	maxLength int
	logger    *slog.Logger
}

// NewDetector creates a cycle detector bounded to [minLength, maxLength].
func NewDetector(minLength, maxLength int, logger *slog.Logger) *Detector {
	return &Detector{minLength: minLength, maxLength: maxLength, logger: logger}
}

// Detect walks every node as a potential cycle start, in sorted order, and
// emits one ring per distinct member set. Fixing each cycle's minimum node
// as its DFS start and only extending to larger nodes (the closing edge
// back to start excepted) rules out rotational duplicates without ever
// re-enumerating a rotation; a global member-set seen-table additionally
// collapses the two directions a cycle can be traversed in when both exist
// as distinct directed cycles.
func (d *Detector) Detect(g *graphmodel.Graph, counter *ringid.Counter) []*model.RawRing {
	var rings []*model.RawRing
	seen := make(map[string]bool)

	for _, start := range g.Nodes() {
		visited := map[string]bool{start: true}
		d.dfs(g, start, start, []string{start}, visited, seen, counter, &rings)
	}

	if d.logger != nil {
		d.logger.Info("cycle detection complete", "rings_found", len(rings))
	}
	return rings
}

func (d *Detector) dfs(
	g *graphmodel.Graph,
	start, current string,
	path []string,
	visited map[string]bool,
	seen map[string]bool,
	counter *ringid.Counter,
	rings *[]*model.RawRing,
) {
	for _, n := range g.OutNeighbors(current) {
		if n == start {
			length := len(path)
			if length >= d.minLength && length <= d.maxLength {
				key := canonicalKey(path)
				if !seen[key] {
					seen[key] = true
					members := append([]string(nil), path...)
					ring := model.NewRawRing(counter.Next(), members, model.PatternCycle)
					ring.AddLabelToAll(model.CycleLengthLabel(length))
					*rings = append(*rings, ring)
				}
			}
			continue
		}

		if n < start || visited[n] || len(path) >= d.maxLength {
			continue
		}

		visited[n] = true
		extended := append(append([]string(nil), path...), n)
		d.dfs(g, start, n, extended, visited, seen, counter, rings)
		delete(visited, n)
	}
}

func canonicalKey(members []string) string {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}
