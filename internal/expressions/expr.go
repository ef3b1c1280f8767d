package expressions

import (
	"context"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/calyra/flowaudit/pkg/schema"
)

// ExprEngine evaluates alert-threshold expressions over analysis results,
// e.g. "healthScore < 50 && critical > 0". The data map becomes the
// expression environment, so result fields read as top-level variables.
// Thread-safe: compiled programs are cached and reused across goroutines.
type ExprEngine struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewExprEngine creates a new Expr engine.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{
		cache: make(map[string]*vm.Program),
	}
}

// Name returns the engine identifier.
func (e *ExprEngine) Name() string {
	return "expr"
}

// Evaluate compiles (or retrieves from cache) an expression and evaluates it
// against the provided data.
func (e *ExprEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "empty expr expression")
	}

	prg, err := e.getOrCompile(expression, data)
	if err != nil {
		return nil, err
	}

	env := data
	if env == nil {
		env = map[string]any{}
	}

	out, err := vm.Run(prg, env)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeExpression,
			"expr evaluation failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	return out, nil
}

// ShouldAlert evaluates a threshold expression against an AnalysisResult and
// returns true when the expression produces a boolean true. The environment
// exposes healthScore, grade, critical, high, medium, low, total, and
// isActive as top-level variables.
func (e *ExprEngine) ShouldAlert(ctx context.Context, expression string, result *schema.AnalysisResult) (bool, error) {
	out, err := e.Evaluate(ctx, expression, AlertEnv(result))
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, schema.NewErrorf(schema.ErrCodeExpression,
			"alert expression %q did not produce a boolean", expression)
	}
	return b, nil
}

// AlertEnv flattens an AnalysisResult into the threshold environment.
func AlertEnv(result *schema.AnalysisResult) map[string]any {
	return map[string]any{
		"healthScore": result.HealthScore,
		"grade":       string(result.Grade),
		"confidence":  string(result.Confidence),
		"critical":    result.IssuesSummary.Critical,
		"high":        result.IssuesSummary.High,
		"medium":      result.IssuesSummary.Medium,
		"low":         result.IssuesSummary.Low,
		"total":       result.IssuesSummary.Total,
		"isActive":    result.Metadata.IsActive,
	}
}

// getOrCompile returns a cached compiled program or compiles and caches a new one.
func (e *ExprEngine) getOrCompile(expression string, data map[string]any) (*vm.Program, error) {
	e.mu.RLock()
	if prg, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prg, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if prg, ok := e.cache[expression]; ok {
		return prg, nil
	}

	prg, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"expr compile error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	e.cache[expression] = prg
	return prg, nil
}
