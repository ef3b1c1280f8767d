package analyzer

import (
	"context"
	"testing"

	"github.com/calyra/flowaudit/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, doc *schema.WorkflowDocument) *schema.AnalysisResult {
	t.Helper()
	return New(nil).Analyze(context.Background(), doc)
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	result := analyze(t, &schema.WorkflowDocument{ID: "wf1", Name: "Empty"})

	assert.Equal(t, 100, result.HealthScore)
	assert.Equal(t, schema.GradeExcellent, result.Grade)
	assert.Equal(t, schema.ConfidenceLow, result.Confidence)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 0, result.IssuesSummary.Total)
	assert.Equal(t, "wf1", result.WorkflowID)
	assert.Equal(t, "Empty", result.WorkflowName)
	assert.NotEmpty(t, result.Recommendations)
}

func TestAnalyzeNilDocument(t *testing.T) {
	result := analyze(t, nil)

	assert.Equal(t, 100, result.HealthScore)
	assert.Equal(t, schema.ConfidenceLow, result.Confidence)
	assert.Empty(t, result.WorkflowID)
}

func TestAnalyzeHealthyWorkflow(t *testing.T) {
	doc := &schema.WorkflowDocument{
		ID:     "wf1",
		Name:   "Welcome Sequence",
		Status: "active",
		Nodes: []schema.RawNode{
			{ID: "t1", Type: "form_submitted", Description: "New lead arrives"},
			{ID: "e1", Type: "email", Description: "Welcome mail", Config: map[string]any{"to": "{{contact.email}}"}},
			{ID: "d1", Type: "delay", Description: "Wait a day", Config: map[string]any{"duration": "24h"}},
			{ID: "e2", Type: "email", Description: "Follow up", Config: map[string]any{"to": "{{contact.email}}"}},
		},
		Connections: []schema.RawConnection{
			{From: "t1", To: "e1"},
			{From: "e1", To: "d1"},
			{From: "d1", To: "e2"},
		},
	}
	result := analyze(t, doc)

	assert.Equal(t, 100, result.HealthScore)
	assert.Equal(t, schema.GradeExcellent, result.Grade)
	assert.Empty(t, result.Issues)
	assert.True(t, result.Metadata.IsActive)
	assert.Equal(t, 4, result.Metadata.TotalNodes)
	assert.Equal(t, 4, result.Metadata.AnalyzedNodes)
	assert.False(t, result.Metadata.HasLoops)
}

func TestAnalyzeLocalhostWebhookIsCritical(t *testing.T) {
	doc := &schema.WorkflowDocument{
		ID: "wf1",
		Nodes: []schema.RawNode{
			{ID: "t1", Type: "form_submitted", Description: "entry"},
			{ID: "w1", Type: "webhook", Description: "notify", Config: map[string]any{
				"url":      "http://localhost:3000/hook",
				"onError":  "continue",
				"timeout":  10.0,
				"fallback": "skip",
			}},
		},
		Connections: []schema.RawConnection{{From: "t1", To: "w1"}},
	}
	result := analyze(t, doc)

	require.Equal(t, 1, result.IssuesSummary.Critical)
	assert.Equal(t, 75, result.HealthScore)
	assert.Equal(t, schema.GradeGood, result.Grade)

	var found bool
	for _, iss := range result.Issues {
		if iss.Title == "Webhook Points to Localhost" {
			found = true
			assert.Equal(t, []string{"w1"}, iss.NodeRefs)
		}
	}
	assert.True(t, found)
}

func TestAnalyzeThreeCriticalsIsHighRisk(t *testing.T) {
	// Three isolated payment actions with no retry logic, each wired from
	// its own trigger so nothing else fires.
	doc := &schema.WorkflowDocument{
		ID: "wf1",
		Nodes: []schema.RawNode{
			{ID: "t1", Type: "schedule", Description: "entry"},
			{ID: "p1", Type: "payment", Description: "charge 1", Config: map[string]any{
				"onError": "continue", "timeout": 10.0, "fallback": "skip"}},
			{ID: "p2", Type: "payment", Description: "charge 2", Config: map[string]any{
				"onError": "continue", "timeout": 10.0, "fallback": "skip"}},
			{ID: "p3", Type: "payment", Description: "charge 3", Config: map[string]any{
				"onError": "continue", "timeout": 10.0, "fallback": "skip"}},
		},
		Connections: []schema.RawConnection{
			{From: "t1", To: "p1"},
			{From: "p1", To: "p2"},
			{From: "p2", To: "p3"},
		},
	}
	result := analyze(t, doc)

	assert.Equal(t, 3, result.IssuesSummary.Critical)
	assert.Equal(t, 3, result.IssuesSummary.Total)
	assert.Equal(t, 25, result.HealthScore)
	assert.Equal(t, schema.GradeHighRisk, result.Grade)
	assert.Contains(t, result.Recommendations[0], "critical issues first")
}

func TestAnalyzeInfiniteLoopDetected(t *testing.T) {
	doc := &schema.WorkflowDocument{
		ID: "wf1",
		Nodes: []schema.RawNode{
			{ID: "a", Type: "add_tag", Description: "tag"},
			{ID: "b", Type: "remove_tag", Description: "untag"},
		},
		Connections: []schema.RawConnection{
			{From: "a", To: "b"},
			{From: "b", To: "a"},
		},
	}
	result := analyze(t, doc)

	assert.True(t, result.Metadata.HasLoops)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "Infinite Loop Detected", result.Issues[0].Title)
}

func TestAnalyzeTriggerConflictsReported(t *testing.T) {
	doc := &schema.WorkflowDocument{
		ID: "wf1",
		Nodes: []schema.RawNode{
			{ID: "t1", Type: "tag_added", Description: "entry a"},
			{ID: "t2", Type: "contact_updated", Description: "entry b"},
		},
		Connections: []schema.RawConnection{},
	}
	result := analyze(t, doc)

	assert.True(t, result.Metadata.HasTriggerConflicts)
	var found bool
	for _, iss := range result.Issues {
		if iss.Title == "Conflicting Triggers" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeCoverageCountsReachableNodes(t *testing.T) {
	doc := &schema.WorkflowDocument{
		ID: "wf1",
		Nodes: []schema.RawNode{
			{ID: "t1", Type: "form_submitted", Description: "entry"},
			{ID: "a1", Type: "add_tag", Description: "reached"},
			{ID: "island1", Type: "add_tag", Description: "unreached"},
			{ID: "island2", Type: "add_tag", Description: "unreached"},
			{ID: "island3", Type: "add_tag", Description: "unreached"},
			{ID: "island4", Type: "add_tag", Description: "unreached"},
		},
		Connections: []schema.RawConnection{
			{From: "t1", To: "a1"},
			{From: "island1", To: "island2"},
			{From: "island2", To: "island3"},
			{From: "island3", To: "island4"},
		},
	}
	result := analyze(t, doc)

	assert.Equal(t, 6, result.Metadata.TotalNodes)
	assert.Equal(t, 2, result.Metadata.AnalyzedNodes)
	// 2/6 coverage on a 6-node graph.
	assert.Equal(t, schema.ConfidenceLow, result.Confidence)
}

func TestAnalyzeDeterministicExceptTimestamp(t *testing.T) {
	doc := &schema.WorkflowDocument{
		ID:     "wf1",
		Status: "active",
		Nodes: []schema.RawNode{
			{ID: "t1", Type: "form_submitted"},
			{ID: "w1", Type: "webhook"},
			{ID: "c1", Type: "condition"},
		},
		Connections: []schema.RawConnection{
			{From: "t1", To: "w1"},
			{From: "w1", To: "c1"},
		},
	}

	a := analyze(t, doc)
	b := analyze(t, doc)

	a.Timestamp = b.Timestamp
	assert.Equal(t, a, b)
}

func TestAnalyzePerformanceEstimateAttached(t *testing.T) {
	doc := &schema.WorkflowDocument{
		ID: "wf1",
		Nodes: []schema.RawNode{
			{ID: "t1", Type: "form_submitted", Description: "entry"},
			{ID: "d1", Type: "delay", Description: "wait", Config: map[string]any{"duration": "90s"}},
		},
		Connections: []schema.RawConnection{{From: "t1", To: "d1"}},
	}
	result := analyze(t, doc)

	assert.Equal(t, 2, result.Performance.EstimatedSteps)
	assert.Equal(t, schema.ComplexityLow, result.Performance.Complexity)
	require.Len(t, result.Performance.Bottlenecks, 1)
	assert.Equal(t, "d1", result.Performance.Bottlenecks[0].NodeID)
}

func TestAnalyzeLegacyDocument(t *testing.T) {
	doc := &schema.WorkflowDocument{
		ID: "wf1",
		Triggers: []schema.RawNode{{ID: "t1", Type: "form_submitted"}},
		Actions: []schema.RawNode{
			{ID: "a1", Type: "email", Description: "welcome", Config: map[string]any{"to": "{{contact.email}}"}},
			{ID: "a2", Type: "add_tag", Description: "tag the lead"},
		},
	}
	result := analyze(t, doc)

	assert.Equal(t, 3, result.Metadata.TotalNodes)
	assert.Equal(t, 3, result.Metadata.AnalyzedNodes)
	assert.Equal(t, 100, result.HealthScore)
}
