// Package validation guards the analyzer's boundary. The core itself never
// rejects semantically-malformed documents; this package is the caller-side
// shape check (JSON Schema Draft 2020-12) that rejects inputs which are not
// even object-shaped workflow documents before Analyze runs.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/calyra/flowaudit/pkg/schema"
)

// documentSchemaJSON is the JSON Schema for WorkflowDocument validation.
// Deliberately permissive: it pins the container shapes (arrays of objects,
// string ids) and nothing else, because missing or odd config fields are
// findings for the rule catalog, not rejection reasons.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowaudit.dev/schemas/document.json",
  "type": "object",
  "properties": {
    "id": { "type": "string" },
    "name": { "type": "string" },
    "status": { "type": "string" },
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "triggers": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "actions": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "webhooks": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "connections": {
      "type": "array",
      "items": { "$ref": "#/$defs/connection" }
    }
  },
  "$defs": {
    "node": {
      "type": "object",
      "properties": {
        "id": { "type": "string" },
        "type": { "type": "string" },
        "name": { "type": "string" },
        "description": { "type": "string" },
        "config": { "type": "object" }
      }
    },
    "connection": {
      "type": "object",
      "required": ["from", "to"],
      "properties": {
        "id": { "type": "string" },
        "from": { "type": "string" },
        "to": { "type": "string" },
        "branch": { "type": "string" }
      }
    }
  }
}`

// DocumentValidator validates raw workflow documents against the boundary
// schema. It is safe for concurrent use.
type DocumentValidator struct {
	documentSchema *jsonschema.Schema
}

// NewDocumentValidator creates a DocumentValidator with the schema pre-compiled.
func NewDocumentValidator() (*DocumentValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal document schema: %w", err)
	}
	if err := c.AddResource("https://flowaudit.dev/schemas/document.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add document schema resource: %w", err)
	}

	compiled, err := c.Compile("https://flowaudit.dev/schemas/document.json")
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}

	return &DocumentValidator{documentSchema: compiled}, nil
}

// ValidateRaw validates raw JSON bytes against the boundary schema.
func (v *DocumentValidator) ValidateRaw(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "document is not valid JSON").WithCause(err)
	}
	if err := v.documentSchema.Validate(doc); err != nil {
		return toFlowauditError(err)
	}
	return nil
}

// ValidateDocument validates a parsed WorkflowDocument by round-tripping it
// through JSON so numbers become json.Number as the library requires.
func (v *DocumentValidator) ValidateDocument(doc *schema.WorkflowDocument) error {
	if doc == nil {
		return schema.NewError(schema.ErrCodeValidation, "workflow document is nil")
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize workflow document").WithCause(err)
	}
	return v.ValidateRaw(b)
}

// toFlowauditError converts a jsonschema.ValidationError into a
// FlowauditError carrying the leaf violation messages.
func toFlowauditError(err error) *schema.FlowauditError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("document validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf messages
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
