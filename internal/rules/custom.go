package rules

import (
	"context"
	"fmt"

	"github.com/calyra/flowaudit/internal/expressions"
	"github.com/calyra/flowaudit/pkg/schema"
)

// CustomRuleSpec is a user-supplied lint rule: a CEL predicate evaluated
// once per canonical node. A node for which the predicate returns true
// produces one issue.
type CustomRuleSpec struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category,omitempty"`
	Severity      schema.Severity `json:"severity"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Expression    string          `json:"expression"`
	FixSuggestion string          `json:"fixSuggestion,omitempty"`
}

// CustomRule adapts a CustomRuleSpec to the Rule interface using a shared
// CEL engine. Evaluation errors are swallowed per node: a broken custom
// expression must not take down the rest of the catalog.
type CustomRule struct {
	spec   CustomRuleSpec
	engine *expressions.CELEngine
}

// NewCustomRule builds a CustomRule. The expression is compiled eagerly so
// syntax errors surface at load time, not during analysis.
func NewCustomRule(spec CustomRuleSpec, engine *expressions.CELEngine) (*CustomRule, error) {
	if spec.Expression == "" {
		return nil, schema.NewErrorf(schema.ErrCodeValidation, "custom rule %q has no expression", spec.ID)
	}
	if spec.Severity.Level() == 0 {
		spec.Severity = schema.SeverityLow
	}
	if spec.Category == "" {
		spec.Category = schema.CategoryConfiguration
	}
	// Compile check with an empty activation.
	if _, err := engine.Evaluate(context.Background(), spec.Expression, nil); err != nil {
		if ferr, ok := err.(*schema.FlowauditError); ok && ferr.Code == schema.ErrCodeValidation {
			return nil, err
		}
		// Runtime errors against the empty activation are fine; only
		// compile errors disqualify the rule.
	}
	return &CustomRule{spec: spec, engine: engine}, nil
}

func (r *CustomRule) ID() string                 { return r.spec.ID }
func (r *CustomRule) Name() string              { return r.spec.Name }
func (r *CustomRule) Category() string          { return r.spec.Category }
func (r *CustomRule) Severity() schema.Severity { return r.spec.Severity }

func (r *CustomRule) Check(rc *Context) []schema.Issue {
	workflow := map[string]any{}
	if rc.Doc != nil {
		workflow = map[string]any{
			"id":     rc.Doc.ID,
			"name":   rc.Doc.Name,
			"status": rc.Doc.Status,
		}
	}

	var issues []schema.Issue
	for _, n := range rc.Graph.Nodes {
		data := map[string]any{
			"node": map[string]any{
				"id":      n.ID,
				"kind":    string(n.Kind),
				"rawType": n.RawType,
				"label":   n.Label,
			},
			"config":   n.Config,
			"workflow": workflow,
		}

		out, err := r.engine.Evaluate(context.Background(), r.spec.Expression, data)
		if err != nil {
			continue
		}
		matched, ok := out.(bool)
		if !ok || !matched {
			continue
		}

		desc := r.spec.Description
		if desc == "" {
			desc = fmt.Sprintf("Node %q matched custom rule %s.", n.Label, r.spec.Name)
		}
		issues = append(issues, schema.Issue{
			Severity:      r.spec.Severity,
			Category:      r.spec.Category,
			Title:         r.spec.Title,
			Description:   desc,
			NodeRefs:      []string{n.ID},
			FixSuggestion: r.spec.FixSuggestion,
		})
	}
	return issues
}
