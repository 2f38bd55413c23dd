package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/types"
)

// Dashboard counts active employees by the state of their latest punch.
// Employees without a decodable latest punch are unknown.
func (s *ReportService) Dashboard(ctx context.Context) (types.DashboardSummary, error) {
	started := s.now()
	total, err := s.directory.CountActive(ctx)
	if err != nil {
		return types.DashboardSummary{}, fmt.Errorf("count active: %w", err)
	}
	plan, state, err := s.resolve(ctx)
	if err != nil {
		return types.DashboardSummary{}, err
	}

	resp := types.DashboardSummary{
		TotalEmployees: total,
		GeneratedAt:    started.Format(attendance.TimestampLayout),
	}
	if plan.Supported() {
		latest, err := s.events.LatestForActive(ctx, plan)
		if err != nil {
			return types.DashboardSummary{}, fmt.Errorf("latest events: %w", err)
		}
		for _, e := range latest {
			if e.Flag == nil {
				continue
			}
			st := *e.Flag
			if state.SwapApplied {
				st = st.Invert()
			}
			if st == attendance.In {
				resp.InCount++
			} else {
				resp.OutCount++
			}
		}
	}
	resp.UnknownCount = max(total-resp.InCount-resp.OutCount, 0)

	s.finish(ctx, store.ReportRun{
		Kind:           KindDashboard,
		MappingVariant: state.MappingVariant,
		SwapApplied:    state.SwapApplied,
		RowCount:       total,
	}, started, 0)
	return resp, nil
}

// SearchEmployees lists up to EmployeeSearchLimit active employees whose
// name, card or employee id contains search. An empty search lists all.
func (s *ReportService) SearchEmployees(ctx context.Context, search string) (types.EmployeeList, error) {
	emps, err := s.directory.SearchEmployees(ctx, strings.TrimSpace(search), EmployeeSearchLimit)
	if err != nil {
		return types.EmployeeList{}, fmt.Errorf("search employees: %w", err)
	}
	out := types.EmployeeList{Employees: make([]types.EmployeeInfo, 0, len(emps))}
	for _, e := range emps {
		ident := identityOf(e)
		out.Employees = append(out.Employees, types.EmployeeInfo{
			EmpID:        e.EmployeeID,
			EmployeeID:   e.EmployeeID,
			CardNo:       ident.CardNo,
			EmployeeName: ident.EmployeeName,
			Department:   ident.Department,
		})
	}
	out.Count = len(out.Employees)
	return out, nil
}

// Mapping reports the live polarity interpretation and the recent
// detector history.
func (s *ReportService) Mapping(ctx context.Context) (types.MappingStatus, error) {
	_, state, err := s.resolve(ctx)
	if err != nil {
		return types.MappingStatus{}, err
	}
	resp := types.MappingStatus{
		Mapping:         mappingOf(state),
		DetectorVariant: string(state.DetectorVariant),
		AutoDetected:    state.AutoDetected,
		ManualOverride:  state.ManualOverride,
		Snapshots:       []types.MappingSnapshot{},
	}
	if s.snapshots == nil {
		return resp, nil
	}

	snaps, err := s.snapshots.RecentMappingSnapshots(ctx, mappingSnapshotLimit)
	if err != nil {
		return types.MappingStatus{}, fmt.Errorf("mapping snapshots: %w", err)
	}
	for _, sn := range snaps {
		resp.Snapshots = append(resp.Snapshots, types.MappingSnapshot{
			DetectorVariant: string(sn.DetectorVariant),
			SwapApplied:     sn.SwapApplied,
			AutoDetected:    sn.AutoDetected,
			ManualOverride:  sn.ManualOverride,
			Samples:         sn.Samples,
			InRatio:         sn.InRatio,
			OutRatio:        sn.OutRatio,
			DetectedAt:      sn.DetectedAt.UTC().Format(attendance.TimestampLayout),
		})
	}
	return resp, nil
}
