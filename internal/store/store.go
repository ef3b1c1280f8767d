package store

import (
	"context"
	"time"
)

// Store defines the persistence layer contract for analysis history and
// scheduled scans. All implementations must be safe for concurrent use.
type Store interface {
	// Analysis history (append-only)
	SaveAnalysis(ctx context.Context, rec *AnalysisRecord) error
	GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*AnalysisRecord, error)
	// LatestAnalysis serves the TTL cache: the most recent record for the
	// workflow no older than maxAge, or NOT_FOUND.
	LatestAnalysis(ctx context.Context, workflowID string, maxAge time.Duration) (*AnalysisRecord, error)

	// Scheduled scans
	CreateScheduledScan(ctx context.Context, scan *ScheduledScan) error
	GetScheduledScan(ctx context.Context, id string) (*ScheduledScan, error)
	UpdateScheduledScan(ctx context.Context, id string, update ScheduledScanUpdate) error
	ListScheduledScans(ctx context.Context, filter ScheduledScanFilter) ([]*ScheduledScan, error)
	DeleteScheduledScan(ctx context.Context, id string) error

	// Maintenance
	Migrate(ctx context.Context) error
	Vacuum(ctx context.Context) error

	// Lifecycle
	Close() error
}
