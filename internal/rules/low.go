package rules

import (
	"fmt"

	"github.com/calyra/flowaudit/internal/graphx"
	"github.com/calyra/flowaudit/internal/normalize"
	"github.com/calyra/flowaudit/pkg/schema"
)

// MissingDescriptionRule flags action nodes in the raw document that carry
// no human-readable description.
type MissingDescriptionRule struct{}

func (r *MissingDescriptionRule) ID() string                 { return "FA013" }
func (r *MissingDescriptionRule) Name() string              { return "missing-description" }
func (r *MissingDescriptionRule) Category() string          { return schema.CategoryMaintenance }
func (r *MissingDescriptionRule) Severity() schema.Severity { return schema.SeverityLow }

func (r *MissingDescriptionRule) Check(rc *Context) []schema.Issue {
	if rc.Doc == nil {
		return nil
	}

	var issues []schema.Issue
	check := func(raw schema.RawNode, fallbackID string) {
		if raw.Description != "" {
			return
		}
		id := raw.ID
		if id == "" {
			id = fallbackID
		}
		label := raw.Name
		if label == "" {
			label = id
		}
		issues = append(issues, schema.Issue{
			Severity:      r.Severity(),
			Category:      r.Category(),
			Title:         "Action Missing Description",
			Description:   fmt.Sprintf("Action %q has no description. Future maintainers cannot tell what it is for.", label),
			NodeRefs:      []string{id},
			FixSuggestion: "Add a one-line description explaining the action's purpose.",
		})
	}

	for i, raw := range rc.Doc.Actions {
		check(raw, fmt.Sprintf("%s_%d", raw.Type, i))
	}
	for i, raw := range rc.Doc.Nodes {
		if normalize.KindOf(raw.Type) != schema.KindAction {
			continue
		}
		check(raw, fmt.Sprintf("%s_%d", raw.Type, i))
	}
	return issues
}

// EnrichmentOrderRule flags communication actions that run before any data
// enrichment while an enrichment step exists later in the sequence: the
// message goes out with stale data that is refreshed right after.
type EnrichmentOrderRule struct{}

func (r *EnrichmentOrderRule) ID() string                 { return "FA014" }
func (r *EnrichmentOrderRule) Name() string              { return "enrichment-order" }
func (r *EnrichmentOrderRule) Category() string          { return schema.CategoryStructure }
func (r *EnrichmentOrderRule) Severity() schema.Severity { return schema.SeverityLow }

func (r *EnrichmentOrderRule) Check(rc *Context) []schema.Issue {
	// Cyclic graphs have no meaningful sequence.
	order, ok := graphx.TopoSort(rc.Graph)
	if !ok {
		return nil
	}

	byID := make(map[string]*schema.CanonicalNode, len(rc.Graph.Nodes))
	for i := range rc.Graph.Nodes {
		byID[rc.Graph.Nodes[i].ID] = &rc.Graph.Nodes[i]
	}

	enrichmentSeen := false
	var issues []schema.Issue
	for pos, id := range order {
		n := byID[id]
		caps := CapabilitiesOf(n.RawType)
		if caps.IsEnrichment {
			enrichmentSeen = true
			continue
		}
		if !caps.IsCommunication || enrichmentSeen {
			continue
		}
		// Is there an enrichment step later in the sequence?
		for _, laterID := range order[pos+1:] {
			if CapabilitiesOf(byID[laterID].RawType).IsEnrichment {
				issues = append(issues, schema.Issue{
					Severity:      r.Severity(),
					Category:      r.Category(),
					Title:         "Message Sent Before Data Enrichment",
					Description:   fmt.Sprintf("Node %q sends a message before the enrichment step %q runs. The message uses pre-enrichment data.", n.Label, byID[laterID].Label),
					NodeRefs:      []string{n.ID, laterID},
					FixSuggestion: "Move the enrichment step ahead of the first outbound message.",
				})
				break
			}
		}
	}
	return issues
}

// BareConditionRule flags condition nodes with fewer than two outgoing
// edges: a condition that cannot branch decides nothing.
type BareConditionRule struct{}

func (r *BareConditionRule) ID() string                 { return "FA015" }
func (r *BareConditionRule) Name() string              { return "bare-condition" }
func (r *BareConditionRule) Category() string          { return schema.CategoryStructure }
func (r *BareConditionRule) Severity() schema.Severity { return schema.SeverityLow }

func (r *BareConditionRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, n := range rc.Graph.NodesOfKind(schema.KindCondition) {
		if len(rc.Graph.Outgoing(n.ID)) >= 2 {
			continue
		}
		issues = append(issues, schema.Issue{
			Severity:      r.Severity(),
			Category:      r.Category(),
			Title:         "Condition Without Branches",
			Description:   fmt.Sprintf("Condition node %q has fewer than two outgoing paths, so it never actually branches.", n.Label),
			NodeRefs:      []string{n.ID},
			FixSuggestion: "Give the condition both a true and a false path, or remove it.",
		})
	}
	return issues
}

// DisconnectedNodeRule flags non-trigger nodes with no edges at all.
type DisconnectedNodeRule struct{}

func (r *DisconnectedNodeRule) ID() string                 { return "FA016" }
func (r *DisconnectedNodeRule) Name() string              { return "disconnected-node" }
func (r *DisconnectedNodeRule) Category() string          { return schema.CategoryStructure }
func (r *DisconnectedNodeRule) Severity() schema.Severity { return schema.SeverityLow }

func (r *DisconnectedNodeRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, n := range rc.Graph.Nodes {
		if n.Kind == schema.KindTrigger {
			continue
		}
		if len(rc.Graph.Outgoing(n.ID)) > 0 || len(rc.Graph.Incoming(n.ID)) > 0 {
			continue
		}
		issues = append(issues, schema.Issue{
			Severity:      r.Severity(),
			Category:      r.Category(),
			Title:         "Disconnected Node",
			Description:   fmt.Sprintf("Node %q is not connected to the rest of the workflow and never executes.", n.Label),
			NodeRefs:      []string{n.ID},
			FixSuggestion: "Wire the node into the flow or delete it.",
		})
	}
	return issues
}
