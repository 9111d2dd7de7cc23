// Package centrality flags accounts with anomalously high in-degree: the
// top slice of the in-degree distribution, excluding accounts with no
// incoming edges at all. This is the in-process analog of graph-engine's
// centrality-calculation RPC, computed directly from the aggregated graph
// instead of a Neo4j degree-centrality query.
package centrality

import (
	"log/slog"
	"math"
	"sort"

	"github.com/aegisshield/mule-detection-engine/internal/graphmodel"
)

// Analyzer flags the top TopFraction of nodes by in-degree, among nodes
// with in-degree > 0.
type Analyzer struct {
	topFraction float64
	logger      *slog.Logger
}

// NewAnalyzer creates a centrality analyzer using the given top-fraction
// cutoff, e.g. 0.05 for the top 5%.
func NewAnalyzer(topFraction float64, logger *slog.Logger) *Analyzer {
	return &Analyzer{topFraction: topFraction, logger: logger}
}

// inDegrees counts every node's incoming edges by scanning every node's out-neighbors;
// the graph is small enough per analysis that this avoids needing a second
// index alongside graphmodel.Graph's adjacency-oriented API.
func inDegrees(g *graphmodel.Graph) map[string]int {
	degrees := make(map[string]int)
	for _, n := range g.Nodes() {
		for _, out := range g.OutNeighbors(n) {
			degrees[out]++
		}
	}
	return degrees
}

// Analyze returns the set of account ids whose in-degree is at or above
// the k-th largest in-degree among non-isolated-in nodes, where
// k = max(1, floor(topFraction * N)).
func (a *Analyzer) Analyze(g *graphmodel.Graph) map[string]struct{} {
	degrees := inDegrees(g)

	nonIsolated := make([]int, 0, len(degrees))
	for _, n := range g.Nodes() {
		if d := degrees[n]; d > 0 {
			nonIsolated = append(nonIsolated, d)
		}
	}

	flagged := make(map[string]struct{})
	if len(nonIsolated) == 0 {
		return flagged
	}

	sort.Sort(sort.Reverse(sort.IntSlice(nonIsolated)))

	k := int(math.Floor(a.topFraction * float64(len(nonIsolated))))
	if k < 1 {
		k = 1
	}
	if k > len(nonIsolated) {
		k = len(nonIsolated)
	}
	threshold := nonIsolated[k-1]

	for _, n := range g.Nodes() {
		if d := degrees[n]; d > 0 && d >= threshold {
			flagged[n] = struct{}{}
		}
	}

	if a.logger != nil {
		a.logger.Info("centrality analysis complete", "threshold", threshold, "accounts_flagged", len(flagged))
	}
	return flagged
}
