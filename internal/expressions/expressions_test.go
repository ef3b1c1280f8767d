package expressions

import (
	"context"
	"sync"
	"testing"

	"github.com/calyra/flowaudit/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnginesImplementInterface(t *testing.T) {
	celEng, err := NewCELEngine()
	require.NoError(t, err)

	engines := []Engine{celEng, NewExprEngine(), NewGoJQEngine()}
	names := map[string]bool{}
	for _, e := range engines {
		names[e.Name()] = true
	}
	assert.Equal(t, map[string]bool{"cel": true, "expr": true, "jq": true}, names)
}

func TestCELEngineEvaluate(t *testing.T) {
	engine, err := NewCELEngine()
	require.NoError(t, err)
	ctx := context.Background()

	out, err := engine.Evaluate(ctx, `node.rawType == "webhook"`, map[string]any{
		"node": map[string]any{"rawType": "webhook"},
	})
	require.NoError(t, err)
	assert.Equal(t, true, out)

	// Absent variables default to empty maps instead of erroring.
	out, err = engine.Evaluate(ctx, `"url" in config`, nil)
	require.NoError(t, err)
	assert.Equal(t, false, out)
}

func TestCELEngineCompileError(t *testing.T) {
	engine, err := NewCELEngine()
	require.NoError(t, err)

	_, err = engine.Evaluate(context.Background(), `node.rawType ==`, nil)
	require.Error(t, err)

	var ferr *schema.FlowauditError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, schema.ErrCodeValidation, ferr.Code)
}

func TestCELEngineEmptyExpression(t *testing.T) {
	engine, err := NewCELEngine()
	require.NoError(t, err)

	_, err = engine.Evaluate(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestCELEngineConcurrent(t *testing.T) {
	engine, err := NewCELEngine()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := engine.Evaluate(context.Background(), `1 + 1 == 2`, nil)
			assert.NoError(t, err)
			assert.Equal(t, true, out)
		}()
	}
	wg.Wait()
}

func TestExprEngineEvaluate(t *testing.T) {
	engine := NewExprEngine()
	ctx := context.Background()

	out, err := engine.Evaluate(ctx, "healthScore < 50 && critical > 0", map[string]any{
		"healthScore": 25,
		"critical":    3,
	})
	require.NoError(t, err)
	assert.Equal(t, true, out)
}

func TestExprEngineCompileError(t *testing.T) {
	engine := NewExprEngine()

	_, err := engine.Evaluate(context.Background(), "health )( score", nil)
	require.Error(t, err)

	var ferr *schema.FlowauditError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, schema.ErrCodeValidation, ferr.Code)
}

func TestShouldAlert(t *testing.T) {
	engine := NewExprEngine()
	ctx := context.Background()

	result := &schema.AnalysisResult{
		HealthScore:   25,
		Grade:         schema.GradeHighRisk,
		IssuesSummary: schema.IssueSummary{Critical: 3, Total: 3},
		Metadata:      schema.AnalysisMetadata{IsActive: true},
	}

	tests := []struct {
		expression string
		want       bool
	}{
		{"healthScore < 50", true},
		{"healthScore >= 50", false},
		{"critical > 0 && isActive", true},
		{`grade == "high_risk"`, true},
		{"total >= 3", true},
	}
	for _, tt := range tests {
		got, err := engine.ShouldAlert(ctx, tt.expression, result)
		require.NoError(t, err, tt.expression)
		assert.Equal(t, tt.want, got, tt.expression)
	}
}

func TestShouldAlertNonBoolean(t *testing.T) {
	engine := NewExprEngine()
	_, err := engine.ShouldAlert(context.Background(), "healthScore + 1", &schema.AnalysisResult{})
	require.Error(t, err)

	var ferr *schema.FlowauditError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, schema.ErrCodeExpression, ferr.Code)
}

func TestAlertEnv(t *testing.T) {
	result := &schema.AnalysisResult{
		HealthScore:   80,
		Grade:         schema.GradeGood,
		Confidence:    schema.ConfidenceHigh,
		IssuesSummary: schema.IssueSummary{High: 1, Low: 2, Total: 3},
	}
	env := AlertEnv(result)

	assert.Equal(t, 80, env["healthScore"])
	assert.Equal(t, string(schema.GradeGood), env["grade"])
	assert.Equal(t, 1, env["high"])
	assert.Equal(t, 3, env["total"])
	assert.Equal(t, false, env["isActive"])
}

func TestGoJQEngineEvaluate(t *testing.T) {
	engine := NewGoJQEngine()
	ctx := context.Background()

	data := map[string]any{
		"healthScore": 75.0,
		"issues": []any{
			map[string]any{"severity": "critical", "title": "A"},
			map[string]any{"severity": "low", "title": "B"},
		},
	}

	out, err := engine.Evaluate(ctx, ".healthScore", data)
	require.NoError(t, err)
	assert.Equal(t, 75.0, out)

	out, err = engine.Evaluate(ctx, `[.issues[] | select(.severity == "critical") | .title]`, data)
	require.NoError(t, err)
	assert.Equal(t, []any{"A"}, out)

	// Multiple bare outputs collect into a slice.
	out, err = engine.Evaluate(ctx, ".issues[].title", data)
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "B"}, out)
}

func TestGoJQEngineParseError(t *testing.T) {
	engine := NewGoJQEngine()
	_, err := engine.Evaluate(context.Background(), ".[(", nil)
	require.Error(t, err)

	var ferr *schema.FlowauditError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, schema.ErrCodeValidation, ferr.Code)
}

func TestGoJQEngineNoOutput(t *testing.T) {
	engine := NewGoJQEngine()
	out, err := engine.Evaluate(context.Background(), ".issues[]?", map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, out)
}
