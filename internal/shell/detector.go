// Package shell enumerates layered-shell chains: directed simple paths
// whose interior nodes are all low-degree pass-through accounts. This is
// the mule-detection analog of graph-engine's shell-company path search,
// run as a bounded DFS over the in-memory graph instead of a variable-length
// Cypher MATCH against Neo4j.
package shell

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/aegisshield/mule-detection-engine/internal/graphmodel"
	"github.com/aegisshield/mule-detection-engine/internal/model"
	"github.com/aegisshield/mule-detection-engine/internal/ringid"
)

// Detector enumerates directed simple paths with edge count in
// [MinHops, MaxHops] whose interior nodes all have combined degree
// (in-degree + out-degree) at most MaxInteriorDegree.
type Detector struct {
	minHops           int
	maxHops           int
	maxInteriorDegree int
	logger            *slog.Logger
}

// NewDetector creates a shell-chain detector bounded to [minHops, maxHops]
// edges, requiring every interior node to have combined degree at most
// maxInteriorDegree.
func NewDetector(minHops, maxHops, maxInteriorDegree int, logger *slog.Logger) *Detector {
	return &Detector{minHops: minHops, maxHops: maxHops, maxInteriorDegree: maxInteriorDegree, logger: logger}
}

// Detect runs a DFS from every node with an outgoing edge, in sorted
// order, testing every path against the hop band and interior-degree cap at
// every depth it passes through. Every qualifying path mints its own ring;
// the only deduplication is by exact member set, so a longer chain and a
// qualifying prefix of it both surface as separate rings when the prefix's
// own member set hasn't been seen before. The endpoint degree is never
// checked — only interior nodes must be shells.
func (d *Detector) Detect(g *graphmodel.Graph, degrees model.DegreeMap, counter *ringid.Counter) []*model.RawRing {
	var rings []*model.RawRing
	seen := make(map[string]bool)

	for _, start := range g.Nodes() {
		if g.OutDegree(start) == 0 {
			continue
		}
		visited := map[string]bool{start: true}
		d.dfs(g, degrees, []string{start}, visited, seen, counter, &rings)
	}

	if d.logger != nil {
		d.logger.Info("shell chain detection complete", "rings_found", len(rings))
	}
	return rings
}

func (d *Detector) dfs(
	g *graphmodel.Graph,
	degrees model.DegreeMap,
	path []string,
	visited map[string]bool,
	seen map[string]bool,
	counter *ringid.Counter,
	rings *[]*model.RawRing,
) {
	edges := len(path) - 1
	if edges >= d.minHops && d.interiorOK(path, degrees) {
		key := canonicalKey(path)
		if !seen[key] {
			seen[key] = true
			members := append([]string(nil), path...)
			ring := model.NewRawRing(counter.Next(), members, model.PatternLayeredShell)
			ring.AddLabelToAll(model.LabelLayeredShellChain)
			*rings = append(*rings, ring)
		}
	}

	if edges >= d.maxHops {
		return
	}

	current := path[len(path)-1]
	for _, n := range g.OutNeighbors(current) {
		if visited[n] {
			continue
		}
		visited[n] = true
		d.dfs(g, degrees, append(path, n), visited, seen, counter, rings)
		delete(visited, n)
	}
}

// interiorOK reports whether every node strictly between the first and
// last element of path has combined degree at most maxInteriorDegree.
func (d *Detector) interiorOK(path []string, degrees model.DegreeMap) bool {
	if len(path) < 3 {
		return true
	}
	for _, n := range path[1 : len(path)-1] {
		if degrees[n] > d.maxInteriorDegree {
			return false
		}
	}
	return true
}

func canonicalKey(members []string) string {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}
