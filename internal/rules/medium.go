package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/calyra/flowaudit/pkg/schema"
)

// maxUncheckedChain is the longest trigger chain tolerated without a single
// condition checkpoint on it.
const maxUncheckedChain = 10

// LongChainRule flags triggers whose longest reachable chain exceeds
// maxUncheckedChain steps with zero condition checkpoints on that path.
type LongChainRule struct{}

func (r *LongChainRule) ID() string                 { return "FA009" }
func (r *LongChainRule) Name() string              { return "long-unchecked-chain" }
func (r *LongChainRule) Category() string          { return schema.CategoryStructure }
func (r *LongChainRule) Severity() schema.Severity { return schema.SeverityMedium }

func (r *LongChainRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, c := range rc.Chains {
		if c.Steps <= maxUncheckedChain || c.Checkpoints > 0 {
			continue
		}
		issues = append(issues, schema.Issue{
			Severity:      r.Severity(),
			Category:      r.Category(),
			Title:         "Long Chain Without Checkpoints",
			Description:   fmt.Sprintf("Trigger %q starts a %d-step chain with no condition checkpoint. Every contact runs the full chain unconditionally.", c.TriggerID, c.Steps),
			NodeRefs:      []string{c.TriggerID},
			FixSuggestion: "Break the chain with condition nodes so contacts exit early when steps no longer apply.",
		})
	}
	return issues
}

// MissingFallbackRule flags critical action types with no fallback path:
// neither a fallback config nor a second outgoing edge.
type MissingFallbackRule struct{}

func (r *MissingFallbackRule) ID() string                 { return "FA010" }
func (r *MissingFallbackRule) Name() string              { return "missing-fallback" }
func (r *MissingFallbackRule) Category() string          { return schema.CategoryErrorHandling }
func (r *MissingFallbackRule) Severity() schema.Severity { return schema.SeverityMedium }

func (r *MissingFallbackRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, n := range rc.Graph.Nodes {
		if !CapabilitiesOf(n.RawType).IsCritical {
			continue
		}
		if cfgHas(n.Config, "fallback", "fallbackPath") || len(rc.Graph.Outgoing(n.ID)) > 1 {
			continue
		}
		issues = append(issues, schema.Issue{
			Severity:      r.Severity(),
			Category:      r.Category(),
			Title:         "Critical Action Without Fallback Path",
			Description:   fmt.Sprintf("Node %q is a %s action with a single downstream path and no fallback. A failure leaves contacts stranded.", n.Label, n.RawType),
			NodeRefs:      []string{n.ID},
			FixSuggestion: "Add a fallback branch or configure a fallback action for the failure case.",
		})
	}
	return issues
}

// DeprecatedVersionRule flags URLs and explicit version fields referencing
// deprecated API version tokens.
type DeprecatedVersionRule struct{}

func (r *DeprecatedVersionRule) ID() string                 { return "FA011" }
func (r *DeprecatedVersionRule) Name() string              { return "deprecated-api-version" }
func (r *DeprecatedVersionRule) Category() string          { return schema.CategoryMaintenance }
func (r *DeprecatedVersionRule) Severity() schema.Severity { return schema.SeverityMedium }

var deprecatedVersionToken = regexp.MustCompile(`(?i)(^|[/._-])(v1|v2|beta|alpha)([/._-]|$)`)

func (r *DeprecatedVersionRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, n := range rc.Graph.Nodes {
		candidates := []string{}
		if v, ok := cfgString(n.Config, "url", "endpoint"); ok {
			candidates = append(candidates, v)
		}
		if v, ok := cfgString(n.Config, "version", "apiVersion"); ok {
			candidates = append(candidates, v)
		}
		for _, v := range candidates {
			if !deprecatedVersionToken.MatchString(v) {
				continue
			}
			issues = append(issues, schema.Issue{
				Severity:      r.Severity(),
				Category:      r.Category(),
				Title:         "Deprecated API Version",
				Description:   fmt.Sprintf("Node %q references %q, which points at a deprecated API version.", n.Label, v),
				NodeRefs:      []string{n.ID},
				FixSuggestion: "Migrate the call to the current API version before the old one is retired.",
			})
			break
		}
	}
	return issues
}

// MissingTimeoutRule flags external-call actions that have no configured
// timeout. A hung call blocks the contact at that step indefinitely.
type MissingTimeoutRule struct{}

func (r *MissingTimeoutRule) ID() string                 { return "FA012" }
func (r *MissingTimeoutRule) Name() string              { return "missing-timeout" }
func (r *MissingTimeoutRule) Category() string          { return schema.CategoryConfiguration }
func (r *MissingTimeoutRule) Severity() schema.Severity { return schema.SeverityMedium }

func (r *MissingTimeoutRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, n := range rc.Graph.Nodes {
		if !CapabilitiesOf(n.RawType).NeedsTimeout {
			continue
		}
		if cfgHas(n.Config, "timeout", "timeoutMs", "timeoutSeconds") {
			continue
		}
		issues = append(issues, schema.Issue{
			Severity:      r.Severity(),
			Category:      r.Category(),
			Title:         "External Call Without Timeout",
			Description:   fmt.Sprintf("Node %q makes a %s call with no timeout configured.", n.Label, strings.ToLower(n.RawType)),
			NodeRefs:      []string{n.ID},
			FixSuggestion: "Set an explicit timeout on the call so hung requests fail fast.",
		})
	}
	return issues
}
