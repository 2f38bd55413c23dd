package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	dbpkg "github.com/BrandonDHaskell/timekeep/internal/db"
)

type ReportRunStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewReportRunStore(db *sql.DB, writer *dbpkg.Worker) *ReportRunStore {
	return &ReportRunStore{db: db, writer: writer}
}

func (s *ReportRunStore) RecordRun(ctx context.Context, run store.ReportRun) error {
	kind := strings.TrimSpace(run.Kind)
	if kind == "" {
		return fmt.Errorf("RecordRun: empty kind")
	}
	if run.RequestedAt.IsZero() {
		run.RequestedAt = time.Now().UTC()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO report_runs(
  kind, subject, period, mapping_variant, swap_applied, row_count, duration_ms, requested_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`, kind, run.Subject, run.Period, run.MappingVariant, boolInt(run.SwapApplied),
			run.RowCount, run.Duration.Milliseconds(), run.RequestedAt.UTC().UnixMilli()); err != nil {
			return fmt.Errorf("RecordRun insert: %w", err)
		}
		return nil
	})
}

// RecentRuns returns the newest runs first.
func (s *ReportRunStore) RecentRuns(ctx context.Context, limit int) ([]store.ReportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, subject, period, mapping_variant, swap_applied, row_count, duration_ms, requested_at_ms
FROM report_runs
ORDER BY requested_at_ms DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentRuns: %w", err)
	}
	defer rows.Close()

	var out []store.ReportRun
	for rows.Next() {
		var (
			r          store.ReportRun
			swap       int
			durationMs int64
			atMs       int64
		)
		if err := rows.Scan(&r.ID, &r.Kind, &r.Subject, &r.Period, &r.MappingVariant,
			&swap, &r.RowCount, &durationMs, &atMs); err != nil {
			return nil, fmt.Errorf("RecentRuns scan: %w", err)
		}
		r.SwapApplied = swap != 0
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.RequestedAt = time.UnixMilli(atMs).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneOlderThan deletes runs requested before cutoff and returns how many
// rows went. Uses idx_report_runs_time.
func (s *ReportRunStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM report_runs WHERE requested_at_ms < ?;`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ store.ReportRunStore = (*ReportRunStore)(nil)
