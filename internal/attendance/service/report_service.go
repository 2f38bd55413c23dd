package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/types"
	"github.com/BrandonDHaskell/timekeep/internal/logging"
	"github.com/BrandonDHaskell/timekeep/internal/metrics"
)

var (
	ErrCardRequired = errors.New("card_no is required")
)

// IsValidationError reports whether err came from bad caller input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrCardRequired) || attendance.IsValidationError(err)
}

const (
	// EmployeeSearchLimit caps SearchEmployees.
	EmployeeSearchLimit  = 200
	mappingSnapshotLimit = 20

	// dailyLookaround pads the daily fetch window on both sides.
	dailyLookaround = 12 * time.Hour
)

// Report kinds, as recorded in report runs and metrics.
const (
	KindDaily      = "daily"
	KindMonthly    = "monthly"
	KindYearly     = "yearly"
	KindDailyAll   = "daily_all"
	KindMonthlyAll = "monthly_all"
	KindYearlyAll  = "yearly_all"
	KindDashboard  = "dashboard"
)

// PlanSource yields the vendor variant plan. *attendance.SchemaResolver
// satisfies it.
type PlanSource interface {
	Plan(ctx context.Context) (attendance.VariantPlan, error)
}

// MappingSource yields the live polarity mapping for a plan.
// *attendance.MappingResolver satisfies it.
type MappingSource interface {
	State(ctx context.Context, plan attendance.VariantPlan) (attendance.MappingState, error)
}

type Dependencies struct {
	Schema    PlanSource
	Mapping   MappingSource
	Events    store.EventSource
	Directory store.EmployeeDirectory
	Engine    attendance.Engine

	// Runs and Snapshots are optional.
	Runs      store.ReportRunStore
	Snapshots store.MappingSnapshotStore
}

// ReportService answers every attendance report from the vendor database.
type ReportService struct {
	schema    PlanSource
	mapping   MappingSource
	events    store.EventSource
	directory store.EmployeeDirectory
	engine    attendance.Engine
	runs      store.ReportRunStore
	snapshots store.MappingSnapshotStore
	now       func() time.Time
}

func NewReportService(deps Dependencies) *ReportService {
	return &ReportService{
		schema:    deps.Schema,
		mapping:   deps.Mapping,
		events:    deps.Events,
		directory: deps.Directory,
		engine:    deps.Engine,
		runs:      deps.Runs,
		snapshots: deps.Snapshots,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Tests only.
func (s *ReportService) SetClock(now func() time.Time) { s.now = now }

// resolve returns the current plan and the mapping state to apply to it.
func (s *ReportService) resolve(ctx context.Context) (attendance.VariantPlan, attendance.MappingState, error) {
	plan, err := s.schema.Plan(ctx)
	if err != nil {
		return attendance.VariantPlan{}, attendance.MappingState{}, fmt.Errorf("resolve schema: %w", err)
	}
	state, err := s.mapping.State(ctx, plan)
	if err != nil {
		return attendance.VariantPlan{}, attendance.MappingState{}, fmt.Errorf("resolve mapping: %w", err)
	}
	return plan, state, nil
}

func mappingOf(state attendance.MappingState) types.Mapping {
	return types.Mapping{MappingVariant: state.MappingVariant, SwapApplied: state.SwapApplied}
}

// identity returns the report header for cardNo. Unknown cards fall back
// to the card number as name.
func (s *ReportService) identity(ctx context.Context, cardNo string) (types.Identity, error) {
	emp, found, err := s.directory.Identity(ctx, cardNo)
	if err != nil {
		return types.Identity{}, fmt.Errorf("employee identity: %w", err)
	}
	if !found {
		emp = attendance.Employee{CardNo: cardNo}
	}
	return identityOf(emp), nil
}

func identityOf(emp attendance.Employee) types.Identity {
	name := strings.TrimSpace(emp.Name)
	if name == "" {
		name = emp.CardNo
	}
	return types.Identity{
		EmployeeName: name,
		CardNo:       emp.CardNo,
		Department:   optional(emp.Department),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func cardParam(cardNo string) (string, error) {
	cardNo = strings.TrimSpace(cardNo)
	if cardNo == "" {
		return "", ErrCardRequired
	}
	return cardNo, nil
}

func segmentTotals(inMin, outMin int) types.SegmentTotals {
	return types.SegmentTotals{
		TotalInMinutes:  inMin,
		TotalOutMinutes: outMin,
		TotalInHHMM:     attendance.HHMM(inMin),
		TotalOutHHMM:    attendance.HHMM(outMin),
	}
}

// segmentEvents prepends the anchor (the last event before the window) to
// the events strictly before end.
func segmentEvents(anchor *attendance.RawEvent, events []attendance.RawEvent, end time.Time) []attendance.RawEvent {
	out := make([]attendance.RawEvent, 0, len(events)+1)
	if anchor != nil {
		out = append(out, *anchor)
	}
	for _, e := range events {
		if e.Time.Before(end) {
			out = append(out, e)
		}
	}
	return out
}

// sortByName orders rows by lowercased name, then card number.
func sortByName[T any](rows []T, key func(T) (string, string)) {
	slices.SortStableFunc(rows, func(a, b T) int {
		an, ac := key(a)
		bn, bc := key(b)
		if c := cmp.Compare(strings.ToLower(an), strings.ToLower(bn)); c != 0 {
			return c
		}
		return cmp.Compare(ac, bc)
	})
}

// finish records metrics and a report run. Audit failures are logged and
// never fail the report.
func (s *ReportService) finish(ctx context.Context, run store.ReportRun, started time.Time, notes int) {
	run.Duration = s.now().Sub(started)
	run.RequestedAt = started
	metrics.RecordReport(run.Kind, run.Duration, notes)

	if s.runs == nil {
		return
	}
	if err := s.runs.RecordRun(ctx, run); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("component", "reports").
			Str("kind", run.Kind).
			Msg("record report run")
	}
}
