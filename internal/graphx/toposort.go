package graphx

import (
	"sort"

	"github.com/calyra/flowaudit/pkg/schema"
)

// TopoSort runs Kahn's algorithm over the full edge set. It returns the
// topological node-id order and true, or nil and false when the graph
// contains any cycle (the sorted output covers fewer nodes than the graph).
// This validity check is stricter than the Loop report: it flags cycles
// regardless of exit conditions.
func TopoSort(g *schema.CanonicalGraph) ([]string, bool) {
	adj := adjacency(g)

	inDegree := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		inDegree[n.ID] = 0
	}
	for _, targets := range adj {
		for _, t := range targets {
			inDegree[t]++
		}
	}

	queue := make([]string, 0, len(g.Nodes))
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	// Sort the initial queue for deterministic output.
	sort.Strings(queue)

	sorted := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		sorted = append(sorted, node)

		for _, next := range adj[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(sorted) != len(g.Nodes) {
		return nil, false
	}
	return sorted, true
}
