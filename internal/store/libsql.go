package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/calyra/flowaudit/pkg/schema"
)

// LibSQLStore implements the Store interface using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path and returns a Store.
// The path should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// Vacuum runs VACUUM on the database.
func (s *LibSQLStore) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// --- Analysis history ---

func (s *LibSQLStore) SaveAnalysis(ctx context.Context, rec *AnalysisRecord) error {
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("marshal analysis result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, location_id, workflow_id, workflow_name, health_score, grade, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.LocationID, rec.WorkflowID, rec.WorkflowName,
		rec.HealthScore, string(rec.Grade), string(result), timeOrNow(rec.CreatedAt),
	)
	return err
}

func (s *LibSQLStore) GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, location_id, workflow_id, workflow_name, health_score, grade, result, created_at
		 FROM analyses WHERE id = ?`, id)
	rec, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("analysis", id)
	}
	return rec, err
}

func (s *LibSQLStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*AnalysisRecord, error) {
	query := `SELECT id, location_id, workflow_id, workflow_name, health_score, grade, result, created_at FROM analyses`
	var conds []string
	var args []any

	if filter.LocationID != "" {
		conds = append(conds, "location_id = ?")
		args = append(args, filter.LocationID)
	}
	if filter.WorkflowID != "" {
		conds = append(conds, "workflow_id = ?")
		args = append(args, filter.WorkflowID)
	}
	if filter.Since != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *LibSQLStore) LatestAnalysis(ctx context.Context, workflowID string, maxAge time.Duration) (*AnalysisRecord, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, location_id, workflow_id, workflow_name, health_score, grade, result, created_at
		 FROM analyses WHERE workflow_id = ? AND created_at >= ?
		 ORDER BY created_at DESC LIMIT 1`, workflowID, cutoff)
	rec, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("analysis for workflow", workflowID)
	}
	return rec, err
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*AnalysisRecord, error) {
	rec := &AnalysisRecord{}
	var grade, resultJSON string
	err := row.Scan(&rec.ID, &rec.LocationID, &rec.WorkflowID, &rec.WorkflowName,
		&rec.HealthScore, &grade, &resultJSON, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.Grade = schema.Grade(grade)
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, fmt.Errorf("unmarshal analysis result: %w", err)
	}
	return rec, nil
}

// --- Scheduled scans ---

func (s *LibSQLStore) CreateScheduledScan(ctx context.Context, scan *ScheduledScan) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scheduled_scans (id, location_id, workflow_id, document_path, cron_expression, alert_expression, enabled, last_run_at, next_run_at, last_run_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.LocationID, scan.WorkflowID, scan.DocumentPath,
		scan.CronExpression, scan.AlertExpression, boolToInt(scan.Enabled),
		nullTime(scan.LastRunAt), nullTime(scan.NextRunAt), scan.LastRunStatus,
		timeOrNow(scan.CreatedAt), timeOrNow(scan.UpdatedAt),
	)
	return err
}

func (s *LibSQLStore) GetScheduledScan(ctx context.Context, id string) (*ScheduledScan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, location_id, workflow_id, document_path, cron_expression, alert_expression, enabled, last_run_at, next_run_at, last_run_status, created_at, updated_at
		 FROM scheduled_scans WHERE id = ?`, id)
	scan, err := scanScheduledScan(row)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("scheduled scan", id)
	}
	return scan, err
}

func (s *LibSQLStore) UpdateScheduledScan(ctx context.Context, id string, update ScheduledScanUpdate) error {
	var sets []string
	var args []any

	if update.Enabled != nil {
		sets = append(sets, "enabled = ?")
		args = append(args, boolToInt(*update.Enabled))
	}
	if update.LastRunAt != nil {
		sets = append(sets, "last_run_at = ?")
		args = append(args, update.LastRunAt.UTC())
	}
	if update.NextRunAt != nil {
		sets = append(sets, "next_run_at = ?")
		args = append(args, update.NextRunAt.UTC())
	}
	if update.LastRunStatus != "" {
		sets = append(sets, "last_run_status = ?")
		args = append(args, update.LastRunStatus)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		"UPDATE scheduled_scans SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "scheduled scan", id)
}

func (s *LibSQLStore) ListScheduledScans(ctx context.Context, filter ScheduledScanFilter) ([]*ScheduledScan, error) {
	query := `SELECT id, location_id, workflow_id, document_path, cron_expression, alert_expression, enabled, last_run_at, next_run_at, last_run_status, created_at, updated_at FROM scheduled_scans`
	var conds []string
	var args []any

	if filter.LocationID != "" {
		conds = append(conds, "location_id = ?")
		args = append(args, filter.LocationID)
	}
	if filter.WorkflowID != "" {
		conds = append(conds, "workflow_id = ?")
		args = append(args, filter.WorkflowID)
	}
	if filter.Enabled != nil {
		conds = append(conds, "enabled = ?")
		args = append(args, boolToInt(*filter.Enabled))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ScheduledScan
	for rows.Next() {
		scan, err := scanScheduledScan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, scan)
	}
	return out, rows.Err()
}

func (s *LibSQLStore) DeleteScheduledScan(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_scans WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "scheduled scan", id)
}

func scanScheduledScan(row rowScanner) (*ScheduledScan, error) {
	scan := &ScheduledScan{}
	var enabled int
	var lastRun, nextRun sql.NullTime
	err := row.Scan(&scan.ID, &scan.LocationID, &scan.WorkflowID, &scan.DocumentPath,
		&scan.CronExpression, &scan.AlertExpression, &enabled,
		&lastRun, &nextRun, &scan.LastRunStatus, &scan.CreatedAt, &scan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	scan.Enabled = enabled != 0
	if lastRun.Valid {
		scan.LastRunAt = &lastRun.Time
	}
	if nextRun.Valid {
		scan.NextRunAt = &nextRun.Time
	}
	return scan, nil
}

// --- helpers ---

func storeNotFound(kind, id string) error {
	return schema.NewErrorf(schema.ErrCodeNotFound, "%s %q not found", kind, id)
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storeNotFound(kind, id)
	}
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
