package schema

// NodeKind is the closed classification of canonical nodes.
// Raw platform types map onto it via a fixed table; unknown types
// default to KindAction rather than failing.
type NodeKind string

const (
	KindTrigger   NodeKind = "trigger"
	KindAction    NodeKind = "action"
	KindCondition NodeKind = "condition"
	KindDelay     NodeKind = "delay"
)

// CanonicalNode is one node of the normalized workflow graph.
// Identity is the ID; uniqueness within a graph is an invariant the
// normalizer maintains. RawType preserves the platform's free-form type
// string for rule matching.
type CanonicalNode struct {
	ID      string         `json:"id"`
	Kind    NodeKind       `json:"kind"`
	RawType string         `json:"rawType"`
	Label   string         `json:"label"`
	Config  map[string]any `json:"config,omitempty"`
}

// CanonicalEdge is a directed control-flow edge. Multiple edges between the
// same pair are permitted (condition branch labels). Dangling endpoints are
// a lint finding, not a structural error.
type CanonicalEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// CanonicalGraph is the normalized node/edge representation produced once per
// analysis call. It is never mutated after the normalizer returns it; all
// downstream components treat it as read-only.
type CanonicalGraph struct {
	Nodes []CanonicalNode `json:"nodes"`
	Edges []CanonicalEdge `json:"edges"`
}

// Node returns the node with the given ID, or nil.
func (g *CanonicalGraph) Node(id string) *CanonicalNode {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// NodesOfKind returns all nodes with the given kind, in graph order.
func (g *CanonicalGraph) NodesOfKind(kind NodeKind) []CanonicalNode {
	var out []CanonicalNode
	for _, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Outgoing returns the edges leaving the given node, in graph order.
func (g *CanonicalGraph) Outgoing(id string) []CanonicalEdge {
	var out []CanonicalEdge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the edges entering the given node, in graph order.
func (g *CanonicalGraph) Incoming(id string) []CanonicalEdge {
	var out []CanonicalEdge
	for _, e := range g.Edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// Loop is a closed cycle path discovered by cycle detection.
// Nodes holds the cycle path with the starting node repeated at the end.
// HasExitCondition is true iff at least one node on the cycle has an
// outgoing edge whose target lies outside the cycle's node set.
type Loop struct {
	Nodes            []string `json:"nodes"`
	HasExitCondition bool     `json:"hasExitCondition"`
}

// Contains reports whether the given node ID lies on the cycle.
func (l Loop) Contains(id string) bool {
	for _, n := range l.Nodes {
		if n == id {
			return true
		}
	}
	return false
}
