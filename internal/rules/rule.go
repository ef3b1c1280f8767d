// Package rules holds the issue-detector catalog. Each rule is an
// independent pure check over the raw document and/or the canonical graph;
// a defective rule cannot corrupt another's findings because rules only
// read their inputs and return a plain issue list.
package rules

import (
	"github.com/calyra/flowaudit/internal/graphx"
	"github.com/calyra/flowaudit/pkg/schema"
)

// Context is the read-only input every rule receives: the raw document, the
// canonical graph, and the graph-analysis artifacts computed once up front.
type Context struct {
	Doc       *schema.WorkflowDocument
	Graph     *schema.CanonicalGraph
	Loops     []schema.Loop
	Conflicts []graphx.TriggerConflict
	Chains    []graphx.Chain
}

// Rule is one entry of the detector catalog.
type Rule interface {
	// ID is the stable rule identifier (e.g. "FA001").
	ID() string
	// Name is the short kebab-case rule name.
	Name() string
	// Category is the issue category every finding of this rule carries.
	Category() string
	// Severity is the fixed severity of this rule's findings.
	Severity() schema.Severity
	// Check inspects the context and returns zero or more issues.
	Check(rc *Context) []schema.Issue
}

// Catalog returns the full fixed rule set, ordered by severity then ID.
func Catalog() []Rule {
	return []Rule{
		// Critical.
		&InfiniteLoopRule{},
		&WebhookURLRule{},
		&PaymentRetryRule{},
		&APIEndpointRule{},
		// High.
		&MissingErrorHandlingRule{},
		&TriggerConflictRule{},
		&RateLimitAdjacencyRule{},
		&HardcodedValueRule{},
		// Medium.
		&LongChainRule{},
		&MissingFallbackRule{},
		&DeprecatedVersionRule{},
		&MissingTimeoutRule{},
		// Low.
		&MissingDescriptionRule{},
		&EnrichmentOrderRule{},
		&BareConditionRule{},
		&DisconnectedNodeRule{},
	}
}

// RunAll executes every rule in the catalog against the context and collects
// the findings in catalog order. Findings are never merged or deduplicated:
// overlapping issues from independent rules are independent evidence.
func RunAll(rc *Context, catalog []Rule) []schema.Issue {
	issues := make([]schema.Issue, 0)
	for _, r := range catalog {
		issues = append(issues, r.Check(rc)...)
	}
	return issues
}
