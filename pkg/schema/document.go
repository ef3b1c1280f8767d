package schema

import "encoding/json"

// WorkflowDocument is the raw, untrusted workflow definition fetched from the
// automation platform. Two incompatible shapes exist in the wild:
//
//   - legacy: triggers[] + actions[] (implicitly sequential) + webhooks[]
//   - modern: nodes[] + connections[]
//
// Shape() discriminates them; the normalizer owns the conversion to a
// CanonicalGraph. Optional fields are treated as absent features, never as
// errors (the rule catalog reports them as issues instead).
type WorkflowDocument struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`

	// Modern shape.
	Nodes []RawNode `json:"nodes,omitempty"`

	// Legacy shape.
	Triggers []RawNode `json:"triggers,omitempty"`
	Actions  []RawNode `json:"actions,omitempty"`
	Webhooks []RawNode `json:"webhooks,omitempty"`

	// Connections are explicit in the modern shape and optional in legacy.
	Connections []RawConnection `json:"connections,omitempty"`
}

// RawNode is one node/trigger/action entry of a WorkflowDocument.
// Config is free-form platform configuration; rules read it duck-typed.
type RawNode struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type,omitempty"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

// RawConnection is an explicit control-flow edge between two raw nodes.
type RawConnection struct {
	ID     string `json:"id,omitempty"`
	From   string `json:"from"`
	To     string `json:"to"`
	Branch string `json:"branch,omitempty"`
}

// DocumentShape discriminates the two supported input formats.
type DocumentShape string

const (
	ShapeModern DocumentShape = "modern"
	ShapeLegacy DocumentShape = "legacy"
	ShapeEmpty  DocumentShape = "empty"
)

// Shape sniffs the document format. Modern wins when both nodes and
// connections are present; anything with triggers or actions is legacy;
// everything else is empty.
func (d *WorkflowDocument) Shape() DocumentShape {
	if len(d.Nodes) > 0 && d.Connections != nil {
		return ShapeModern
	}
	if len(d.Actions) > 0 || len(d.Triggers) > 0 {
		return ShapeLegacy
	}
	return ShapeEmpty
}

// IsActive reports whether the workflow is live on the platform.
// The platform uses a handful of synonyms for the active state.
func (d *WorkflowDocument) IsActive() bool {
	switch d.Status {
	case "active", "published", "live", "enabled":
		return true
	}
	return false
}

// ParseDocument decodes a raw JSON workflow document.
// Unknown fields are ignored; the document is untrusted input.
func ParseDocument(data []byte) (*WorkflowDocument, error) {
	var doc WorkflowDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewError(ErrCodeValidation, "workflow document is not valid JSON").WithCause(err)
	}
	return &doc, nil
}
