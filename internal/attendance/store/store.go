// Package store defines the persistence boundaries of the attendance
// service: the vendor database it reads punches and employees from, and the
// local store it writes its own audit records to.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
)

// ErrVendorUnavailable is returned while the vendor circuit breaker is open.
var ErrVendorUnavailable = errors.New("vendor database unavailable")

// EventSource reads punches from the vendor database. Every method decodes
// flags with plan and returns no events for an unsupported plan.
type EventSource interface {
	attendance.SampleSource

	// EventsForCard returns the card's events in [from, to), oldest first.
	EventsForCard(ctx context.Context, plan attendance.VariantPlan, cardNo string, from, to time.Time) ([]attendance.RawEvent, error)

	// LastEventBefore returns the card's newest event strictly before t, or nil.
	LastEventBefore(ctx context.Context, plan attendance.VariantPlan, cardNo string, t time.Time) (*attendance.RawEvent, error)

	// EventsForActive returns events in [from, to) of every active employee,
	// grouped by card number, each group oldest first.
	EventsForActive(ctx context.Context, plan attendance.VariantPlan, from, to time.Time) (map[string][]attendance.RawEvent, error)

	// LatestForActive returns the newest event of every active employee that
	// has one, keyed by card number.
	LatestForActive(ctx context.Context, plan attendance.VariantPlan) (map[string]attendance.RawEvent, error)
}

// EmployeeDirectory reads active employees from the vendor database.
type EmployeeDirectory interface {
	// Identity returns the active employee with cardNo. found is false when
	// no active employee holds the card.
	Identity(ctx context.Context, cardNo string) (emp attendance.Employee, found bool, err error)

	// ActiveEmployees returns every active employee ordered by name, card.
	ActiveEmployees(ctx context.Context) ([]attendance.Employee, error)

	// SearchEmployees returns up to limit active employees whose name, card
	// or employee id contains search (case-insensitive).
	SearchEmployees(ctx context.Context, search string, limit int) ([]attendance.Employee, error)

	// CountActive counts active employees.
	CountActive(ctx context.Context) (int, error)
}

// ReportRun is one audited report call.
type ReportRun struct {
	ID             int64
	Kind           string
	Subject        string
	Period         string
	MappingVariant string
	SwapApplied    bool
	RowCount       int
	Duration       time.Duration
	RequestedAt    time.Time
}

// ReportRunStore persists report runs in the local store.
type ReportRunStore interface {
	RecordRun(ctx context.Context, run ReportRun) error
	RecentRuns(ctx context.Context, limit int) ([]ReportRun, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MappingSnapshotStore persists polarity detector outcomes.
type MappingSnapshotStore interface {
	attendance.SnapshotRecorder
	RecentMappingSnapshots(ctx context.Context, limit int) ([]attendance.MappingSnapshot, error)
}
