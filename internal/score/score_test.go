package score

import (
	"strings"
	"testing"

	"github.com/calyra/flowaudit/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func joined(recs []string) string {
	return strings.Join(recs, "\n")
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name    string
		summary schema.IssueSummary
		want    int
	}{
		{"no issues", schema.IssueSummary{}, 100},
		{"one critical", schema.IssueSummary{Critical: 1}, 75},
		{"three criticals", schema.IssueSummary{Critical: 3}, 25},
		{"one of each", schema.IssueSummary{Critical: 1, High: 1, Medium: 1, Low: 1}, 53},
		{"clamped at zero", schema.IssueSummary{Critical: 5}, 0},
		{"exactly zero", schema.IssueSummary{Critical: 4}, 0},
		{"lows only", schema.IssueSummary{Low: 10}, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HealthScore(tt.summary))
		})
	}
}

func TestGradeOf(t *testing.T) {
	tests := []struct {
		score int
		want  schema.Grade
	}{
		{100, schema.GradeExcellent},
		{90, schema.GradeExcellent},
		{89, schema.GradeGood},
		{70, schema.GradeGood},
		{69, schema.GradeNeedsAttention},
		{50, schema.GradeNeedsAttention},
		{49, schema.GradeHighRisk},
		{30, schema.GradeHighRisk},
		{25, schema.GradeHighRisk},
		{24, schema.GradeCritical},
		{0, schema.GradeCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeOf(tt.score), "score %d", tt.score)
	}
}

func TestConfidenceOf(t *testing.T) {
	tests := []struct {
		name             string
		analyzed, total  int
		want             schema.Confidence
	}{
		{"empty graph", 0, 0, schema.ConfidenceLow},
		{"full coverage large graph", 10, 10, schema.ConfidenceHigh},
		{"80 percent of 5", 4, 5, schema.ConfidenceHigh},
		{"high coverage tiny graph", 3, 3, schema.ConfidenceMedium},
		{"half coverage", 5, 10, schema.ConfidenceMedium},
		{"small graph low coverage", 1, 4, schema.ConfidenceMedium},
		{"poor coverage", 2, 10, schema.ConfidenceLow},
		{"zero analyzed of many", 0, 20, schema.ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfidenceOf(tt.analyzed, tt.total))
		})
	}
}

func TestRecommendEmptyIssues(t *testing.T) {
	recs := Recommend(nil, schema.AnalysisMetadata{})
	assert.Equal(t, []string{"No action needed. Re-run the analysis after the next workflow change."}, recs)
}

func TestRecommendCriticalFirst(t *testing.T) {
	issues := []schema.Issue{
		{Severity: schema.SeverityLow, Category: schema.CategoryMaintenance},
		{Severity: schema.SeverityCritical, Category: schema.CategoryStructure},
	}
	recs := Recommend(issues, schema.AnalysisMetadata{})

	assert.Contains(t, recs[0], "critical issues first")
}

func TestRecommendCategoryOrderDeterministic(t *testing.T) {
	issues := []schema.Issue{
		{Severity: schema.SeverityLow, Category: schema.CategoryMaintenance},
		{Severity: schema.SeverityMedium, Category: schema.CategoryConfiguration},
		{Severity: schema.SeverityHigh, Category: schema.CategoryErrorHandling},
	}
	first := Recommend(issues, schema.AnalysisMetadata{})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Recommend(issues, schema.AnalysisMetadata{}))
	}

	// Fixed category order: error-handling advice precedes configuration,
	// which precedes maintenance.
	all := joined(first)
	assert.Less(t, strings.Index(all, "error handling"), strings.Index(all, "configurations"))
	assert.Less(t, strings.Index(all, "configurations"), strings.Index(all, "maintainable"))
}

func TestRecommendActiveWorkflowWarning(t *testing.T) {
	issues := []schema.Issue{{Severity: schema.SeverityMedium, Category: schema.CategoryConfiguration}}

	withActive := Recommend(issues, schema.AnalysisMetadata{IsActive: true})
	assert.Contains(t, joined(withActive), "workflow is live")

	withoutActive := Recommend(issues, schema.AnalysisMetadata{})
	assert.NotContains(t, joined(withoutActive), "workflow is live")

	// Active with zero issues does not warn either.
	clean := Recommend(nil, schema.AnalysisMetadata{IsActive: true})
	assert.NotContains(t, joined(clean), "workflow is live")
}

func TestRecommendDecomposition(t *testing.T) {
	recs := Recommend(nil, schema.AnalysisMetadata{TotalNodes: 31})
	assert.Contains(t, joined(recs), "splitting this workflow")

	recs = Recommend(nil, schema.AnalysisMetadata{TotalNodes: 30})
	assert.NotContains(t, joined(recs), "splitting this workflow")
}

func TestRecommendMediumVolume(t *testing.T) {
	var issues []schema.Issue
	for i := 0; i < 6; i++ {
		issues = append(issues, schema.Issue{Severity: schema.SeverityMedium, Category: schema.CategoryConfiguration})
	}
	assert.Contains(t, joined(Recommend(issues, schema.AnalysisMetadata{})), "cleanup pass")
}
