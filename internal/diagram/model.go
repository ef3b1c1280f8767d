package diagram

import "github.com/calyra/flowaudit/pkg/schema"

// Model is the intermediate representation the Mermaid renderer consumes.
type Model struct {
	Title string
	Nodes []*Node
	Edges []Edge
}

// Node represents one canonical workflow node in the diagram.
type Node struct {
	ID    string
	Label string
	Kind  schema.NodeKind
	// Severity is the highest issue severity referencing this node,
	// "" when the node is clean.
	Severity schema.Severity
}

// Edge represents a control-flow edge.
type Edge struct {
	From  string
	To    string
	Label string
}
