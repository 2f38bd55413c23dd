package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	dbpkg "github.com/BrandonDHaskell/timekeep/internal/db"
)

type MappingSnapshotStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewMappingSnapshotStore(db *sql.DB, writer *dbpkg.Worker) *MappingSnapshotStore {
	return &MappingSnapshotStore{db: db, writer: writer}
}

func (s *MappingSnapshotStore) RecordMappingSnapshot(ctx context.Context, snap attendance.MappingSnapshot) error {
	if snap.DetectedAt.IsZero() {
		snap.DetectedAt = time.Now().UTC()
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO mapping_snapshots(
  detector_variant, swap_applied, auto_detected, manual_override, samples, in_ratio, out_ratio, detected_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`, string(snap.DetectorVariant), boolInt(snap.SwapApplied), boolInt(snap.AutoDetected),
			boolInt(snap.ManualOverride), snap.Samples, snap.InRatio, snap.OutRatio,
			snap.DetectedAt.UTC().UnixMilli()); err != nil {
			return fmt.Errorf("RecordMappingSnapshot insert: %w", err)
		}
		return nil
	})
}

// RecentMappingSnapshots returns the newest snapshots first.
func (s *MappingSnapshotStore) RecentMappingSnapshots(ctx context.Context, limit int) ([]attendance.MappingSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, detector_variant, swap_applied, auto_detected, manual_override, samples, in_ratio, out_ratio, detected_at_ms
FROM mapping_snapshots
ORDER BY detected_at_ms DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentMappingSnapshots: %w", err)
	}
	defer rows.Close()

	var out []attendance.MappingSnapshot
	for rows.Next() {
		var (
			snap                 attendance.MappingSnapshot
			variant              string
			swap, auto, override int
			atMs                 int64
		)
		if err := rows.Scan(&snap.ID, &variant, &swap, &auto, &override,
			&snap.Samples, &snap.InRatio, &snap.OutRatio, &atMs); err != nil {
			return nil, fmt.Errorf("RecentMappingSnapshots scan: %w", err)
		}
		snap.DetectorVariant = attendance.Variant(variant)
		snap.SwapApplied = swap != 0
		snap.AutoDetected = auto != 0
		snap.ManualOverride = override != 0
		snap.DetectedAt = time.UnixMilli(atMs).UTC()
		out = append(out, snap)
	}
	return out, rows.Err()
}

var _ store.MappingSnapshotStore = (*MappingSnapshotStore)(nil)
