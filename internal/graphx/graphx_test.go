package graphx

import (
	"fmt"
	"strings"

	"github.com/calyra/flowaudit/pkg/schema"
)

// graph builds a CanonicalGraph from "src->dst" edge specs. Node kinds come
// from the kinds map; unlisted nodes default to actions.
func graph(edges []string, kinds map[string]schema.NodeKind) *schema.CanonicalGraph {
	g := &schema.CanonicalGraph{}
	seen := map[string]bool{}

	addNode := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		kind := kinds[id]
		if kind == "" {
			kind = schema.KindAction
		}
		g.Nodes = append(g.Nodes, schema.CanonicalNode{ID: id, Kind: kind, RawType: string(kind), Label: id})
	}

	for i, spec := range edges {
		parts := strings.Split(spec, "->")
		addNode(parts[0])
		addNode(parts[1])
		g.Edges = append(g.Edges, schema.CanonicalEdge{
			ID:     fmt.Sprintf("e%d", i),
			Source: parts[0],
			Target: parts[1],
		})
	}
	return g
}
