// Package normalize converts raw workflow documents into the canonical
// node/edge graph the rest of the analyzer operates on. It is total:
// any document yields a graph, never an error. Defects in the document
// (dangling edges, duplicate IDs) survive into the graph so the rule
// catalog can report them.
package normalize

import (
	"fmt"

	"github.com/calyra/flowaudit/pkg/schema"
)

// Normalize converts a WorkflowDocument into its CanonicalGraph.
// Modern documents map 1:1 (nodes → nodes, connections → edges).
// Legacy documents synthesize trigger and action nodes in array order and,
// when no explicit connections exist, an implicit sequential chain
// trigger → action₀ → action₁ → …. An empty document yields an empty graph.
func Normalize(doc *schema.WorkflowDocument) *schema.CanonicalGraph {
	if doc == nil {
		return &schema.CanonicalGraph{}
	}

	switch doc.Shape() {
	case schema.ShapeModern:
		return normalizeModern(doc)
	case schema.ShapeLegacy:
		return normalizeLegacy(doc)
	default:
		return &schema.CanonicalGraph{}
	}
}

// normalizeModern maps nodes and connections directly.
func normalizeModern(doc *schema.WorkflowDocument) *schema.CanonicalGraph {
	g := &schema.CanonicalGraph{
		Nodes: make([]schema.CanonicalNode, 0, len(doc.Nodes)),
		Edges: make([]schema.CanonicalEdge, 0, len(doc.Connections)),
	}

	seen := make(map[string]bool, len(doc.Nodes))
	for i, raw := range doc.Nodes {
		n := toCanonical(raw, raw.Type, i)
		if seen[n.ID] {
			// Duplicate IDs collapse to a synthesized unique ID so the
			// graph invariant holds; rules still see the original config.
			n.ID = fmt.Sprintf("%s_dup%d", n.ID, i)
		}
		seen[n.ID] = true
		g.Nodes = append(g.Nodes, n)
	}

	for i, c := range doc.Connections {
		id := c.ID
		if id == "" {
			id = fmt.Sprintf("edge_%d", i)
		}
		g.Edges = append(g.Edges, schema.CanonicalEdge{
			ID:     id,
			Source: c.From,
			Target: c.To,
			Label:  c.Branch,
		})
	}

	return g
}

// normalizeLegacy synthesizes nodes from triggers[] and actions[] and chains
// them sequentially unless the document carries explicit connections.
func normalizeLegacy(doc *schema.WorkflowDocument) *schema.CanonicalGraph {
	g := &schema.CanonicalGraph{}

	for i, raw := range doc.Triggers {
		typ := raw.Type
		if typ == "" {
			typ = "trigger"
		}
		n := toCanonical(raw, typ, i)
		if raw.ID == "" {
			n.ID = fmt.Sprintf("trigger_%d", i)
		}
		n.Kind = schema.KindTrigger
		g.Nodes = append(g.Nodes, n)
	}

	actionStart := len(g.Nodes)
	for i, raw := range doc.Actions {
		typ := raw.Type
		if typ == "" {
			typ = "action"
		}
		n := toCanonical(raw, typ, i)
		if raw.ID == "" {
			n.ID = fmt.Sprintf("%s_%d", typ, i)
		}
		g.Nodes = append(g.Nodes, n)
	}

	for i, raw := range doc.Webhooks {
		n := toCanonical(raw, "webhook", i)
		if raw.ID == "" {
			n.ID = fmt.Sprintf("webhook_%d", i)
		}
		g.Nodes = append(g.Nodes, n)
	}

	// Explicit connections win over chain synthesis.
	if len(doc.Connections) > 0 {
		for i, c := range doc.Connections {
			id := c.ID
			if id == "" {
				id = fmt.Sprintf("edge_%d", i)
			}
			g.Edges = append(g.Edges, schema.CanonicalEdge{
				ID:     id,
				Source: c.From,
				Target: c.To,
				Label:  c.Branch,
			})
		}
		return g
	}

	// Implicit sequential chain: every trigger fans into the first action,
	// actions chain in array order.
	actions := g.Nodes[actionStart : actionStart+len(doc.Actions)]
	if len(actions) > 0 {
		for t := 0; t < actionStart; t++ {
			g.Edges = append(g.Edges, schema.CanonicalEdge{
				ID:     fmt.Sprintf("edge_%s_%s", g.Nodes[t].ID, actions[0].ID),
				Source: g.Nodes[t].ID,
				Target: actions[0].ID,
			})
		}
		for i := 0; i+1 < len(actions); i++ {
			g.Edges = append(g.Edges, schema.CanonicalEdge{
				ID:     fmt.Sprintf("edge_%s_%s", actions[i].ID, actions[i+1].ID),
				Source: actions[i].ID,
				Target: actions[i+1].ID,
			})
		}
	}

	return g
}

// toCanonical builds a CanonicalNode from a raw node, synthesizing an ID
// of the form {type}_{index} when the input has none.
func toCanonical(raw schema.RawNode, rawType string, index int) schema.CanonicalNode {
	id := raw.ID
	if id == "" {
		id = fmt.Sprintf("%s_%d", rawType, index)
	}
	label := raw.Name
	if label == "" {
		label = id
	}
	return schema.CanonicalNode{
		ID:      id,
		Kind:    KindOf(rawType),
		RawType: rawType,
		Label:   label,
		Config:  raw.Config,
	}
}
