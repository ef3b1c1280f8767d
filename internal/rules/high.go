package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/calyra/flowaudit/pkg/schema"
)

// MissingErrorHandlingRule flags external-call actions that have no
// error-handling, fallback, or branch-on-error configuration. An unhandled
// failure on an external call stops the workflow mid-run.
type MissingErrorHandlingRule struct{}

func (r *MissingErrorHandlingRule) ID() string                 { return "FA005" }
func (r *MissingErrorHandlingRule) Name() string              { return "missing-error-handling" }
func (r *MissingErrorHandlingRule) Category() string          { return schema.CategoryErrorHandling }
func (r *MissingErrorHandlingRule) Severity() schema.Severity { return schema.SeverityHigh }

func (r *MissingErrorHandlingRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, n := range rc.Graph.Nodes {
		if !CapabilitiesOf(n.RawType).IsExternalCall {
			continue
		}
		if cfgHas(n.Config, "errorHandling", "onError", "fallback", "branchOnError") {
			continue
		}
		issues = append(issues, schema.Issue{
			Severity:      r.Severity(),
			Category:      r.Category(),
			Title:         "External Call Without Error Handling",
			Description:   fmt.Sprintf("Node %q makes an external %s call with no error handling configured. Any failure halts the workflow.", n.Label, n.RawType),
			NodeRefs:      []string{n.ID},
			FixSuggestion: "Add an onError handler or a branch-on-error path after the external call.",
		})
	}
	return issues
}

// TriggerConflictRule emits one finding per detected trigger conflict.
type TriggerConflictRule struct{}

func (r *TriggerConflictRule) ID() string                 { return "FA006" }
func (r *TriggerConflictRule) Name() string              { return "trigger-conflict" }
func (r *TriggerConflictRule) Category() string          { return schema.CategoryStructure }
func (r *TriggerConflictRule) Severity() schema.Severity { return schema.SeverityHigh }

func (r *TriggerConflictRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, c := range rc.Conflicts {
		issues = append(issues, schema.Issue{
			Severity:      r.Severity(),
			Category:      r.Category(),
			Title:         "Conflicting Triggers",
			Description:   fmt.Sprintf("Triggers %q and %q can fire for the same event: %s. The workflow may run twice per event.", c.A, c.B, c.Reason),
			NodeRefs:      []string{c.A, c.B},
			FixSuggestion: "Consolidate the triggers into one, or add filters so their firing conditions are disjoint.",
		})
	}
	return issues
}

// RateLimitAdjacencyRule flags two rate-limited actions directly adjacent in
// sequence with no delay node between them. Back-to-back sends burn through
// provider rate limits.
type RateLimitAdjacencyRule struct{}

func (r *RateLimitAdjacencyRule) ID() string                 { return "FA007" }
func (r *RateLimitAdjacencyRule) Name() string              { return "rate-limit-adjacency" }
func (r *RateLimitAdjacencyRule) Category() string          { return schema.CategoryPerformance }
func (r *RateLimitAdjacencyRule) Severity() schema.Severity { return schema.SeverityHigh }

func (r *RateLimitAdjacencyRule) Check(rc *Context) []schema.Issue {
	nodes := make(map[string]*schema.CanonicalNode, len(rc.Graph.Nodes))
	for i := range rc.Graph.Nodes {
		nodes[rc.Graph.Nodes[i].ID] = &rc.Graph.Nodes[i]
	}

	var issues []schema.Issue
	for _, e := range rc.Graph.Edges {
		src, ok := nodes[e.Source]
		if !ok {
			continue
		}
		dst, ok := nodes[e.Target]
		if !ok {
			continue
		}
		if !CapabilitiesOf(src.RawType).IsRateLimited || !CapabilitiesOf(dst.RawType).IsRateLimited {
			continue
		}
		issues = append(issues, schema.Issue{
			Severity:      r.Severity(),
			Category:      r.Category(),
			Title:         "Rate-Limited Actions Back to Back",
			Description:   fmt.Sprintf("Node %q flows directly into %q; both are rate-limited action types with no delay between them.", src.Label, dst.Label),
			NodeRefs:      []string{src.ID, dst.ID},
			FixSuggestion: "Insert a delay node between the two actions to stay under provider rate limits.",
		})
	}
	return issues
}

// HardcodedValueRule looks for literal emails, phone numbers, and API keys
// in config fields that normally carry a {{...}} template placeholder.
type HardcodedValueRule struct{}

func (r *HardcodedValueRule) ID() string                 { return "FA008" }
func (r *HardcodedValueRule) Name() string              { return "hardcoded-value" }
func (r *HardcodedValueRule) Category() string          { return schema.CategorySecurity }
func (r *HardcodedValueRule) Severity() schema.Severity { return schema.SeverityHigh }

var (
	emailLiteral  = regexp.MustCompile(`^[\w.+-]+@[\w-]+\.[\w.]+$`)
	phoneLiteral  = regexp.MustCompile(`^\+?[\d\s()-]{7,20}$`)
	apiKeyLiteral = regexp.MustCompile(`^(sk_|pk_|key-|[A-Za-z0-9]{32,})`)
)

// templatedFields are the config keys expected to hold {{...}} placeholders.
var templatedFields = map[string]*regexp.Regexp{
	"to":        emailLiteral,
	"email":     emailLiteral,
	"recipient": emailLiteral,
	"phone":     phoneLiteral,
	"toNumber":  phoneLiteral,
	"apiKey":    apiKeyLiteral,
	"token":     apiKeyLiteral,
}

func (r *HardcodedValueRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, n := range rc.Graph.Nodes {
		for field, pattern := range templatedFields {
			v, ok := cfgString(n.Config, field)
			if !ok || v == "" || strings.Contains(v, "{{") {
				continue
			}
			if !pattern.MatchString(v) {
				continue
			}
			issues = append(issues, schema.Issue{
				Severity:      r.Severity(),
				Category:      r.Category(),
				Title:         "Hardcoded Value In Templated Field",
				Description:   fmt.Sprintf("Node %q has a literal value in field %q where a {{...}} placeholder is expected. Every contact receives the same value.", n.Label, field),
				NodeRefs:      []string{n.ID},
				FixSuggestion: fmt.Sprintf("Replace the literal with a template placeholder, e.g. {{contact.%s}}.", field),
			})
		}
	}
	return issues
}
