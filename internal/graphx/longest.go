package graphx

import (
	"github.com/calyra/flowaudit/pkg/schema"
)

// Chain describes the longest path reachable from one trigger node.
// Steps counts nodes on the path including the trigger itself. Unbounded
// marks chains that run into a cycle; their true length has no static bound.
type Chain struct {
	TriggerID   string   `json:"triggerId"`
	Steps       int      `json:"steps"`
	Checkpoints int      `json:"checkpoints"`
	Unbounded   bool     `json:"unbounded"`
	Path        []string `json:"path"`
}

// pathDepth is the memoized longest-path value for one node.
type pathDepth struct {
	steps     int
	unbounded bool
	next      string // successor achieving the max, "" at a sink
}

// LongestChains computes, for every trigger node, the longest path reachable
// from it. Depths are memoized per node, so reconverging branches (diamond
// patterns) cost linear time instead of exponential. Nodes that reach into a
// cycle are assigned an unbounded sentinel rather than recursed into.
func LongestChains(g *schema.CanonicalGraph) []Chain {
	adj := adjacency(g)

	memo := make(map[string]pathDepth, len(g.Nodes))
	onStack := make(map[string]bool, len(g.Nodes))

	var depth func(id string) pathDepth
	depth = func(id string) pathDepth {
		if d, ok := memo[id]; ok {
			return d
		}
		if onStack[id] {
			// Back-edge: the chain re-enters itself.
			return pathDepth{steps: 0, unbounded: true}
		}
		onStack[id] = true

		best := pathDepth{steps: 1}
		for _, next := range adj[id] {
			d := depth(next)
			if d.unbounded {
				best.unbounded = true
			}
			if d.steps+1 > best.steps {
				best.steps = d.steps + 1
				best.next = next
			}
		}

		onStack[id] = false
		memo[id] = best
		return best
	}

	kinds := make(map[string]schema.NodeKind, len(g.Nodes))
	for _, n := range g.Nodes {
		kinds[n.ID] = n.Kind
	}

	var chains []Chain
	for _, t := range g.NodesOfKind(schema.KindTrigger) {
		d := depth(t.ID)

		path := make([]string, 0, d.steps)
		checkpoints := 0
		for id := t.ID; ; {
			path = append(path, id)
			if kinds[id] == schema.KindCondition {
				checkpoints++
			}
			nd := memo[id]
			if nd.next == "" {
				break
			}
			id = nd.next
		}

		chains = append(chains, Chain{
			TriggerID:   t.ID,
			Steps:       d.steps,
			Checkpoints: checkpoints,
			Unbounded:   d.unbounded,
			Path:        path,
		})
	}
	return chains
}
