package store

import (
	"time"

	"github.com/calyra/flowaudit/pkg/schema"
)

// AnalysisRecord is one persisted analysis: a (location, workflow,
// timestamp) row holding the full JSON result for history and trend
// queries.
type AnalysisRecord struct {
	ID           string                 `json:"id"`
	LocationID   string                 `json:"location_id"`
	WorkflowID   string                 `json:"workflow_id"`
	WorkflowName string                 `json:"workflow_name,omitempty"`
	HealthScore  int                    `json:"health_score"`
	Grade        schema.Grade           `json:"grade"`
	Result       *schema.AnalysisResult `json:"result"`
	CreatedAt    time.Time              `json:"created_at"`
}

// AnalysisFilter narrows history queries. Zero values match everything.
type AnalysisFilter struct {
	LocationID string
	WorkflowID string
	Since      *time.Time
	Limit      int
}

// ScheduledScan is a periodic re-analysis of one workflow. AlertExpression
// is an expr threshold predicate over the result (e.g. "healthScore < 50");
// a true evaluation marks the run as alerted.
type ScheduledScan struct {
	ID              string     `json:"id"`
	LocationID      string     `json:"location_id"`
	WorkflowID      string     `json:"workflow_id"`
	DocumentPath    string     `json:"document_path"`
	CronExpression  string     `json:"cron_expression"`
	AlertExpression string     `json:"alert_expression,omitempty"`
	Enabled         bool       `json:"enabled"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	NextRunAt       *time.Time `json:"next_run_at,omitempty"`
	LastRunStatus   string     `json:"last_run_status,omitempty"` // success | error | alerted
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ScheduledScanFilter narrows scan listings.
type ScheduledScanFilter struct {
	LocationID string
	WorkflowID string
	Enabled    *bool
}

// ScheduledScanUpdate is a partial update applied after a run.
type ScheduledScanUpdate struct {
	Enabled       *bool
	LastRunAt     *time.Time
	NextRunAt     *time.Time
	LastRunStatus string
}
