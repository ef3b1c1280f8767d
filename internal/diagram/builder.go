package diagram

import (
	"github.com/calyra/flowaudit/pkg/schema"
)

// Build constructs a diagram Model from a canonical graph and an optional
// issue list. Each node is overlaid with the highest severity of the issues
// referencing it, so the rendered flowchart doubles as a visual audit.
func Build(title string, g *schema.CanonicalGraph, issues []schema.Issue) *Model {
	worst := make(map[string]schema.Severity, len(g.Nodes))
	for _, iss := range issues {
		for _, ref := range iss.NodeRefs {
			if iss.Severity.Level() > worst[ref].Level() {
				worst[ref] = iss.Severity
			}
		}
	}

	m := &Model{Title: title}
	for _, n := range g.Nodes {
		m.Nodes = append(m.Nodes, &Node{
			ID:       n.ID,
			Label:    nodeLabel(n),
			Kind:     n.Kind,
			Severity: worst[n.ID],
		})
	}
	for _, e := range g.Edges {
		m.Edges = append(m.Edges, Edge{From: e.Source, To: e.Target, Label: e.Label})
	}
	return m
}

// nodeLabel renders a node's display label. The raw type is appended when
// it adds information over the label itself.
func nodeLabel(n schema.CanonicalNode) string {
	if n.Label != "" && n.Label != n.ID && n.RawType != "" {
		return n.Label + " (" + n.RawType + ")"
	}
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}
