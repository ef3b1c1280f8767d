package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeStore      = "STORE_ERROR"
	ErrCodeSchedule   = "SCHEDULE_ERROR"
	ErrCodeExpression = "EXPRESSION_ERROR"
)

// FlowauditError is the structured error type for all flowaudit operations.
type FlowauditError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	Cause      error          `json:"-"`
}

func (e *FlowauditError) Error() string {
	if e.WorkflowID != "" {
		return fmt.Sprintf("[%s] workflow %s: %s", e.Code, e.WorkflowID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *FlowauditError) Unwrap() error {
	return e.Cause
}

// NewError creates a new FlowauditError.
func NewError(code, message string) *FlowauditError {
	return &FlowauditError{Code: code, Message: message}
}

// NewErrorf creates a new FlowauditError with a formatted message.
func NewErrorf(code, format string, args ...any) *FlowauditError {
	return &FlowauditError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithWorkflow attaches a workflow ID to the error.
func (e *FlowauditError) WithWorkflow(id string) *FlowauditError {
	e.WorkflowID = id
	return e
}

// WithCause attaches an underlying cause.
func (e *FlowauditError) WithCause(err error) *FlowauditError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *FlowauditError) WithDetails(details map[string]any) *FlowauditError {
	e.Details = details
	return e
}
