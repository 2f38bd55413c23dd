package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
)

// Local is an in-memory stand-in for the local SQLite store: report runs
// and mapping snapshots.
type Local struct {
	mu        sync.Mutex
	nextID    int64
	runs      []store.ReportRun
	snapshots []attendance.MappingSnapshot
	err       error
}

func NewLocal() *Local {
	return &Local{}
}

// FailWith makes every subsequent write return err. nil clears it.
func (s *Local) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Local) RecordRun(_ context.Context, run store.ReportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if run.RequestedAt.IsZero() {
		run.RequestedAt = time.Now().UTC()
	}
	s.nextID++
	run.ID = s.nextID
	s.runs = append(s.runs, run)
	return nil
}

func (s *Local) RecentRuns(_ context.Context, limit int) ([]store.ReportRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.runs)
	slices.SortStableFunc(out, func(a, b store.ReportRun) int {
		return cmp.Or(b.RequestedAt.Compare(a.RequestedAt), cmp.Compare(b.ID, a.ID))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Local) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	kept := s.runs[:0]
	var deleted int64
	for _, r := range s.runs {
		if r.RequestedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.runs = kept
	return deleted, nil
}

func (s *Local) RecordMappingSnapshot(_ context.Context, snap attendance.MappingSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.nextID++
	snap.ID = s.nextID
	s.snapshots = append(s.snapshots, snap)
	return nil
}

func (s *Local) RecentMappingSnapshots(_ context.Context, limit int) ([]attendance.MappingSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.snapshots)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Runs returns a copy of all recorded runs in insertion order. Test-only helper.
func (s *Local) Runs() []store.ReportRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.runs)
}

var (
	_ store.ReportRunStore       = (*Local)(nil)
	_ store.MappingSnapshotStore = (*Local)(nil)
)
