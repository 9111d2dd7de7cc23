// Package graphmodel builds the directed transaction graph the rest of the
// pipeline traverses. It folds a transaction table into aggregated edges
// the way internal/engine folded Neo4j subgraph queries in the graph-engine
// service, but keeps the whole graph in memory using
// github.com/dominikbraun/graph as the adjacency backbone instead of a
// Cypher round trip.
package graphmodel

import (
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/aegisshield/mule-detection-engine/internal/model"
)

// Graph is a directed, simple graph over account ids. At most one edge
// exists per ordered (sender, receiver) pair; its payload is an *EdgeAgg.
type Graph struct {
	g     graph.Graph[string, string]
	nodes []string // sorted, for deterministic traversal
}

// Build folds transactions into a directed graph by aggregating repeated
// (sender, receiver) pairs, in input order: the first occurrence of a pair
// creates the edge, later occurrences append to it. Returns the graph and
// the unweighted in-degree + out-degree map.
func Build(transactions []model.Transaction) (*Graph, model.DegreeMap, error) {
	type pairKey struct{ sender, receiver string }

	order := make([]pairKey, 0)
	aggs := make(map[pairKey]*model.EdgeAgg)
	nodeSet := make(map[string]struct{})

	for _, tx := range transactions {
		nodeSet[tx.Sender] = struct{}{}
		nodeSet[tx.Receiver] = struct{}{}

		key := pairKey{tx.Sender, tx.Receiver}
		agg, ok := aggs[key]
		if !ok {
			agg = &model.EdgeAgg{}
			aggs[key] = agg
			order = append(order, key)
		}
		agg.TotalAmount += tx.Amount
		agg.Transactions = append(agg.Transactions, tx)
	}

	nodes := make([]string, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	g := graph.New(graph.StringHash, graph.Directed())
	for _, n := range nodes {
		if err := g.AddVertex(n); err != nil {
			return nil, nil, fmt.Errorf("failed to add vertex %q: %w", n, err)
		}
	}
	for _, key := range order {
		agg := aggs[key]
		if err := g.AddEdge(key.sender, key.receiver, graph.EdgeData(agg)); err != nil {
			return nil, nil, fmt.Errorf("failed to add edge %q->%q: %w", key.sender, key.receiver, err)
		}
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute adjacency map: %w", err)
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute predecessor map: %w", err)
	}

	degrees := make(model.DegreeMap, len(nodes))
	for _, n := range nodes {
		degrees[n] = len(adjacency[n]) + len(predecessors[n])
	}

	return &Graph{g: g, nodes: nodes}, degrees, nil
}

// Nodes returns every account in the graph, sorted ascending.
func (gr *Graph) Nodes() []string {
	return gr.nodes
}

// OutNeighbors returns the sorted receivers reachable by one edge from v.
func (gr *Graph) OutNeighbors(v string) []string {
	adjacency, err := gr.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	neighbors := make([]string, 0, len(adjacency[v]))
	for n := range adjacency[v] {
		neighbors = append(neighbors, n)
	}
	sort.Strings(neighbors)
	return neighbors
}

// Edge returns the aggregated edge data for the ordered pair (s, r), if any.
func (gr *Graph) Edge(s, r string) (*model.EdgeAgg, bool) {
	e, err := gr.g.Edge(s, r)
	if err != nil {
		return nil, false
	}
	agg, ok := e.Properties.Data.(*model.EdgeAgg)
	return agg, ok
}

// OutDegree reports how many distinct nodes v has an outgoing edge to.
func (gr *Graph) OutDegree(v string) int {
	adjacency, err := gr.g.AdjacencyMap()
	if err != nil {
		return 0
	}
	return len(adjacency[v])
}
