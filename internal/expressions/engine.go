package expressions

import "context"

// Engine evaluates user-supplied expressions against analyzer data.
// Three implementations: CEL (custom lint rules), Expr (alert thresholds),
// GoJQ (result extraction).
type Engine interface {
	Name() string
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}
