// Package analyzer is the single entry point of the core: it normalizes a
// raw workflow document, runs the graph algorithms and the rule catalog,
// and aggregates everything into one AnalysisResult. A call is synchronous,
// side-effect-free, and safe to invoke concurrently on different documents.
package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github.com/calyra/flowaudit/internal/graphx"
	"github.com/calyra/flowaudit/internal/logging"
	"github.com/calyra/flowaudit/internal/normalize"
	"github.com/calyra/flowaudit/internal/perf"
	"github.com/calyra/flowaudit/internal/rules"
	"github.com/calyra/flowaudit/internal/score"
	"github.com/calyra/flowaudit/pkg/schema"
)

// Analyzer runs the fixed rule catalog plus any registered custom rules.
// The zero-dependency construction path is New(nil): silent logger,
// built-in catalog only.
type Analyzer struct {
	catalog []rules.Rule
	logger  *slog.Logger
}

// New creates an Analyzer with the built-in catalog. extra rules (custom
// CEL rules, usually) run after the built-ins in registration order.
func New(logger *slog.Logger, extra ...rules.Rule) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	catalog := rules.Catalog()
	catalog = append(catalog, extra...)
	return &Analyzer{catalog: catalog, logger: logger}
}

// Analyze produces a fresh AnalysisResult for the document. It never
// returns an error and never panics on semantically-malformed input:
// missing or mistyped fields are absent features the rule catalog reports
// as issues. Two calls on identical documents produce identical results
// except for the timestamp.
func (a *Analyzer) Analyze(ctx context.Context, doc *schema.WorkflowDocument) *schema.AnalysisResult {
	log := logging.LogWith(ctx, a.logger)
	if doc != nil && doc.ID != "" {
		log = log.With(slog.String("workflow_id", doc.ID))
	}

	graph := normalize.Normalize(doc)

	loops := graphx.FindLoops(graph)
	conflicts := graphx.FindTriggerConflicts(graph)
	chains := graphx.LongestChains(graph)

	rc := &rules.Context{
		Doc:       doc,
		Graph:     graph,
		Loops:     loops,
		Conflicts: conflicts,
		Chains:    chains,
	}
	issues := rules.RunAll(rc, a.catalog)
	summary := schema.Summarize(issues)

	meta := schema.AnalysisMetadata{
		AnalyzedNodes:       analyzedNodes(graph),
		TotalNodes:          len(graph.Nodes),
		HasLoops:            len(loops) > 0,
		HasTriggerConflicts: len(conflicts) > 0,
	}
	if doc != nil {
		meta.IsActive = doc.IsActive()
	}

	result := &schema.AnalysisResult{
		HealthScore:     score.HealthScore(summary),
		Confidence:      score.ConfidenceOf(meta.AnalyzedNodes, meta.TotalNodes),
		Issues:          issues,
		IssuesSummary:   summary,
		Recommendations: score.Recommend(issues, meta),
		Performance:     perf.Estimate(graph),
		Metadata:        meta,
		Timestamp:       time.Now().UTC(),
	}
	result.Grade = score.GradeOf(result.HealthScore)
	if doc != nil {
		result.WorkflowID = doc.ID
		result.WorkflowName = doc.Name
	}

	log.Info("workflow analyzed",
		slog.Int("health_score", result.HealthScore),
		slog.String("grade", string(result.Grade)),
		slog.Int("issues", summary.Total),
		slog.Int("nodes", meta.TotalNodes),
	)
	return result
}

// analyzedNodes counts the nodes the analysis meaningfully covered: the
// triggers plus everything reachable from them. Disconnected islands exist
// in the graph but no trigger ever reaches them.
func analyzedNodes(g *schema.CanonicalGraph) int {
	adj := make(map[string][]string, len(g.Nodes))
	known := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = true
	}
	for _, e := range g.Edges {
		if known[e.Source] && known[e.Target] {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}

	reached := make(map[string]bool, len(g.Nodes))
	var queue []string
	for _, t := range g.NodesOfKind(schema.KindTrigger) {
		if !reached[t.ID] {
			reached[t.ID] = true
			queue = append(queue, t.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	return len(reached)
}
