package graphx

import (
	"sort"

	"github.com/calyra/flowaudit/pkg/schema"
)

// FindLoops runs a depth-first search with a recursion stack over every
// previously-unvisited node, so cycles in disconnected components are all
// found. A back-edge into a node still on the stack closes a Loop: the path
// from that node's stack position to the current node, with the start node
// repeated to close the cycle.
//
// Each loop is classified independently: HasExitCondition is true iff some
// node on the cycle has an outgoing edge whose target lies outside the
// cycle's node set.
func FindLoops(g *schema.CanonicalGraph) []schema.Loop {
	adj := adjacency(g)

	visited := make(map[string]bool, len(g.Nodes))
	onStack := make(map[string]bool, len(g.Nodes))
	var stack []string
	var loops []schema.Loop

	var dfs func(id string)
	dfs = func(id string) {
		visited[id] = true
		onStack[id] = true
		stack = append(stack, id)

		for _, next := range adj[id] {
			if !visited[next] {
				dfs(next)
				continue
			}
			if onStack[next] {
				loops = append(loops, closeLoop(stack, next))
			}
		}

		stack = stack[:len(stack)-1]
		onStack[id] = false
	}

	// Deterministic root order.
	roots := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		roots = append(roots, n.ID)
	}
	sort.Strings(roots)

	for _, id := range roots {
		if !visited[id] {
			dfs(id)
		}
	}

	for i := range loops {
		loops[i].HasExitCondition = hasExit(loops[i], adj)
	}
	return loops
}

// closeLoop copies the cycle path from the back-edge target's stack position
// through the current stack top, then repeats the start node to close it.
func closeLoop(stack []string, start string) schema.Loop {
	idx := 0
	for i, id := range stack {
		if id == start {
			idx = i
			break
		}
	}
	path := make([]string, 0, len(stack)-idx+1)
	path = append(path, stack[idx:]...)
	path = append(path, start)
	return schema.Loop{Nodes: path}
}

// hasExit reports whether any node on the cycle has an edge leaving the
// cycle's node set.
func hasExit(loop schema.Loop, adj map[string][]string) bool {
	inCycle := make(map[string]bool, len(loop.Nodes))
	for _, id := range loop.Nodes {
		inCycle[id] = true
	}
	for _, id := range loop.Nodes {
		for _, next := range adj[id] {
			if !inCycle[next] {
				return true
			}
		}
	}
	return false
}
