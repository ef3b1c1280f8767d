package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	locationIDKey ctxKey = iota
	workflowIDKey
	analysisIDKey
)

// WithLocationID returns a context with the location ID set.
func WithLocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, locationIDKey, id)
}

// WithWorkflowID returns a context with the workflow ID set.
func WithWorkflowID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, workflowIDKey, id)
}

// WithAnalysisID returns a context with the analysis ID set.
func WithAnalysisID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, analysisIDKey, id)
}

// LocationID extracts the location ID from the context, or "" if absent.
func LocationID(ctx context.Context) string {
	v, _ := ctx.Value(locationIDKey).(string)
	return v
}

// WorkflowID extracts the workflow ID from the context, or "" if absent.
func WorkflowID(ctx context.Context) string {
	v, _ := ctx.Value(workflowIDKey).(string)
	return v
}

// AnalysisID extracts the analysis ID from the context, or "" if absent.
func AnalysisID(ctx context.Context) string {
	v, _ := ctx.Value(analysisIDKey).(string)
	return v
}

// LogWith returns a logger enriched with correlation IDs from the context.
// Only non-empty values are added as attributes.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := LocationID(ctx); id != "" {
		logger = logger.With(slog.String("location_id", id))
	}
	if id := WorkflowID(ctx); id != "" {
		logger = logger.With(slog.String("workflow_id", id))
	}
	if id := AnalysisID(ctx); id != "" {
		logger = logger.With(slog.String("analysis_id", id))
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler, automatically injecting
// correlation IDs from the context into every log record. Use with
// slog.New(NewCorrelationHandler(inner)) so callers can use
// logger.InfoContext(ctx, ...) and IDs appear automatically.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation ID injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	if v := LocationID(ctx); v != "" {
		r.AddAttrs(slog.String("location_id", v))
	}
	if v := WorkflowID(ctx); v != "" {
		r.AddAttrs(slog.String("workflow_id", v))
	}
	if v := AnalysisID(ctx); v != "" {
		r.AddAttrs(slog.String("analysis_id", v))
	}
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
