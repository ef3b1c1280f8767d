// Package graphx holds the pure graph algorithms the analyzer runs over a
// canonical workflow graph: cycle detection with exit-condition
// classification, Kahn topological validation, trigger-conflict detection,
// and memoized longest-path computation. Everything here is deterministic
// and allocation-local; nothing mutates the input graph.
package graphx

import (
	"sort"

	"github.com/calyra/flowaudit/pkg/schema"
)

// adjacency builds the successor list for every node, in deterministic
// (sorted) order so traversal results are stable across runs.
func adjacency(g *schema.CanonicalGraph) map[string][]string {
	known := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = true
	}

	adj := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		// Dangling edges are a lint finding, not a traversal input.
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	for id := range adj {
		sort.Strings(adj[id])
	}
	return adj
}
