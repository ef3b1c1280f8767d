package schema

import "time"

// Grade buckets a health score for human consumption.
type Grade string

const (
	GradeExcellent      Grade = "excellent"
	GradeGood           Grade = "good"
	GradeNeedsAttention Grade = "needs_attention"
	GradeHighRisk       Grade = "high_risk"
	GradeCritical       Grade = "critical"
)

// Confidence labels how much of the graph the analysis actually covered.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Complexity classifies a workflow's structural complexity.
type Complexity string

const (
	ComplexityLow      Complexity = "low"
	ComplexityMedium   Complexity = "medium"
	ComplexityHigh     Complexity = "high"
	ComplexityVeryHigh Complexity = "very_high"
)

// PerformanceEstimate is a rough execution-time projection for a workflow.
// It is derived statically from node kinds, never by execution.
type PerformanceEstimate struct {
	EstimatedSteps int          `json:"estimatedSteps"`
	EstimatedTime  string       `json:"estimatedTime"`
	Complexity     Complexity   `json:"complexity"`
	Bottlenecks    []Bottleneck `json:"bottlenecks,omitempty"`
}

// Bottleneck is one step expected to dominate execution time.
type Bottleneck struct {
	NodeID  string  `json:"nodeId"`
	Label   string  `json:"label"`
	Seconds float64 `json:"seconds"`
	Reason  string  `json:"reason"`
}

// AnalysisMetadata carries graph-level facts alongside the score.
type AnalysisMetadata struct {
	IsActive            bool `json:"isActive"`
	AnalyzedNodes       int  `json:"analyzedNodes"`
	TotalNodes          int  `json:"totalNodes"`
	HasLoops            bool `json:"hasLoops"`
	HasTriggerConflicts bool `json:"hasTriggerConflicts"`
}

// AnalysisResult is the terminal aggregate of one analysis call.
// It is created fresh per invocation and is JSON-serializable; persistence
// and rendering are collaborator concerns outside the core.
type AnalysisResult struct {
	WorkflowID      string              `json:"workflowId,omitempty"`
	WorkflowName    string              `json:"workflowName,omitempty"`
	HealthScore     int                 `json:"healthScore"`
	Grade           Grade               `json:"grade"`
	Confidence      Confidence          `json:"confidence"`
	Issues          []Issue             `json:"issues"`
	IssuesSummary   IssueSummary        `json:"issuesSummary"`
	Recommendations []string            `json:"recommendations"`
	Performance     PerformanceEstimate `json:"performance"`
	Metadata        AnalysisMetadata    `json:"metadata"`
	Timestamp       time.Time           `json:"timestamp"`
}
