// Package scheduler periodically re-analyzes workflows registered as
// scheduled scans. Fetching documents from the automation platform is a
// collaborator concern; the scheduler only talks to a DocumentSource.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/calyra/flowaudit/internal/analyzer"
	"github.com/calyra/flowaudit/internal/expressions"
	"github.com/calyra/flowaudit/internal/store"
	"github.com/calyra/flowaudit/pkg/schema"
)

// DocumentSource resolves a scheduled scan to the workflow document to
// analyze. The default FileSource reads a JSON file from the scan's
// document path; platform-API sources live outside this module.
type DocumentSource interface {
	Fetch(ctx context.Context, scan *store.ScheduledScan) (*schema.WorkflowDocument, error)
}

// FileSource reads workflow documents from the local filesystem.
type FileSource struct{}

// Fetch loads and parses the JSON document at the scan's document path.
func (FileSource) Fetch(ctx context.Context, scan *store.ScheduledScan) (*schema.WorkflowDocument, error) {
	data, err := os.ReadFile(scan.DocumentPath)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound,
			"read workflow document %q: %s", scan.DocumentPath, err.Error()).WithCause(err)
	}
	return schema.ParseDocument(data)
}

// Scheduler polls the store for due scheduled scans and runs them.
type Scheduler struct {
	store    store.Store
	source   DocumentSource
	analyzer *analyzer.Analyzer
	alerts   *expressions.ExprEngine
	parser   cron.Parser
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex

	inflightMu sync.Mutex
	inflight   map[string]struct{} // scan IDs currently executing (dedup)
}

// NewScheduler creates a new Scheduler.
func NewScheduler(s store.Store, source DocumentSource, an *analyzer.Analyzer, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:    s,
		source:   source,
		analyzer: an,
		alerts:   expressions.NewExprEngine(),
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Start launches the background scheduling loop with a 60s ticker.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}

	schedCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(schedCtx)
	s.logger.Info("scheduler started")
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	// Run an initial tick immediately.
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick checks all enabled scans and runs those that are due.
func (s *Scheduler) tick(ctx context.Context) {
	enabled := true
	scans, err := s.store.ListScheduledScans(ctx, store.ScheduledScanFilter{Enabled: &enabled})
	if err != nil {
		s.logger.Error("failed to list scheduled scans", slog.String("error", err.Error()))
		return
	}

	now := time.Now().UTC()
	for _, scan := range scans {
		if scan.NextRunAt == nil || !scan.NextRunAt.After(now) {
			if !s.tryAcquire(scan.ID) {
				continue // already running (dedup)
			}
			if err := s.runScan(ctx, scan, now); err != nil {
				s.logger.Error("failed to run scheduled scan",
					slog.String("scan_id", scan.ID),
					slog.String("error", err.Error()),
				)
			}
			s.release(scan.ID)
		}
	}
}

// runScan analyzes the scan's workflow, persists the result, evaluates the
// alert expression, and updates the scan's timestamps.
func (s *Scheduler) runScan(ctx context.Context, scan *store.ScheduledScan, now time.Time) error {
	s.logger.Info("running scheduled scan",
		slog.String("scan_id", scan.ID),
		slog.String("workflow_id", scan.WorkflowID),
	)

	doc, err := s.source.Fetch(ctx, scan)
	if err != nil {
		s.logger.Error("scheduled scan fetch failed",
			slog.String("scan_id", scan.ID),
			slog.String("error", err.Error()),
		)
		return s.updateScanStatus(ctx, scan, now, "error")
	}

	result := s.analyzer.Analyze(ctx, doc)

	rec := &store.AnalysisRecord{
		ID:           uuid.New().String(),
		LocationID:   scan.LocationID,
		WorkflowID:   scan.WorkflowID,
		WorkflowName: result.WorkflowName,
		HealthScore:  result.HealthScore,
		Grade:        result.Grade,
		Result:       result,
		CreatedAt:    now,
	}
	if err := s.store.SaveAnalysis(ctx, rec); err != nil {
		s.logger.Error("failed to persist scan result",
			slog.String("scan_id", scan.ID),
			slog.String("error", err.Error()),
		)
		return s.updateScanStatus(ctx, scan, now, "error")
	}

	status := "success"
	if scan.AlertExpression != "" {
		alerted, err := s.alerts.ShouldAlert(ctx, scan.AlertExpression, result)
		if err != nil {
			s.logger.Error("alert expression failed",
				slog.String("scan_id", scan.ID),
				slog.String("error", err.Error()),
			)
		} else if alerted {
			status = "alerted"
			s.logger.Warn("workflow health alert",
				slog.String("scan_id", scan.ID),
				slog.String("workflow_id", scan.WorkflowID),
				slog.Int("health_score", result.HealthScore),
				slog.String("grade", string(result.Grade)),
			)
		}
	}

	return s.updateScanStatus(ctx, scan, now, status)
}

func (s *Scheduler) updateScanStatus(ctx context.Context, scan *store.ScheduledScan, now time.Time, status string) error {
	nextRun, err := s.CalculateNextRun(scan.CronExpression, now)
	if err != nil {
		return fmt.Errorf("calculate next run for scan %q: %w", scan.ID, err)
	}

	return s.store.UpdateScheduledScan(ctx, scan.ID, store.ScheduledScanUpdate{
		LastRunAt:     &now,
		NextRunAt:     &nextRun,
		LastRunStatus: status,
	})
}

// tryAcquire returns true and marks the scan as in-flight if it is not already running.
func (s *Scheduler) tryAcquire(scanID string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, ok := s.inflight[scanID]; ok {
		return false
	}
	s.inflight[scanID] = struct{}{}
	return true
}

// release removes the scan from the in-flight set.
func (s *Scheduler) release(scanID string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, scanID)
}

// CalculateNextRun computes the next run time for a cron expression.
func (s *Scheduler) CalculateNextRun(cronExpr string, from time.Time) (time.Time, error) {
	schedule, err := s.parser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, schema.NewErrorf(schema.ErrCodeSchedule,
			"parse cron expression %q: %s", cronExpr, err.Error()).WithCause(err)
	}
	return schedule.Next(from), nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return nil
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	s.logger.Info("scheduler stopped")
	return nil
}
