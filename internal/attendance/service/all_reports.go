package service

import (
	"context"
	"fmt"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/types"
)

// DailyAll reconciles every active employee on one date.
func (s *ReportService) DailyAll(ctx context.Context, date string) (types.DailyAllReport, error) {
	started := s.now()
	day, err := attendance.ParseDate(date)
	if err != nil {
		return types.DailyAllReport{}, err
	}

	plan, state, err := s.resolve(ctx)
	if err != nil {
		return types.DailyAllReport{}, err
	}
	employees, err := s.directory.ActiveEmployees(ctx)
	if err != nil {
		return types.DailyAllReport{}, fmt.Errorf("active employees: %w", err)
	}
	byCard, err := s.events.EventsForActive(ctx, plan, day.Add(-dailyLookaround), day.Add(24*time.Hour+dailyLookaround))
	if err != nil {
		return types.DailyAllReport{}, fmt.Errorf("daily events: %w", err)
	}

	resp := types.DailyAllReport{
		Date:    day.Format(attendance.DateLayout),
		Rows:    make([]types.DailyAllRow, 0, len(employees)),
		Mapping: mappingOf(state),
	}
	notes := 0
	sum := &resp.Summary
	for _, emp := range employees {
		d := s.engine.ReconcileDay(day, byCard[emp.CardNo], state.SwapApplied)
		notes += len(d.Notes)
		ident := identityOf(emp)
		row := types.DailyAllRow{
			EmployeeName:    ident.EmployeeName,
			CardNo:          ident.CardNo,
			Department:      ident.Department,
			FirstIn:         attendance.FormatTimestamp(d.FirstIn),
			LastOut:         attendance.FormatTimestamp(d.LastOut),
			DurationMinutes: d.DurationMinutes,
			DurationHHMM:    attendance.MinutesToHHMM(d.DurationMinutes),
			TotalInMinutes:  d.TotalInMinutes,
			TotalOutMinutes: d.TotalOutMinutes,
			TotalInHHMM:     attendance.HHMM(d.TotalInMinutes),
			TotalOutHHMM:    attendance.HHMM(d.TotalOutMinutes),
			SessionsCount:   len(d.Intervals),
			MissingPunch:    d.MissingPunch,
		}
		resp.Rows = append(resp.Rows, row)

		if d.DurationMinutes != nil {
			sum.TotalWorkingDays++
			sum.TotalDurationMinutes += *d.DurationMinutes
		}
		if d.MissingPunch {
			sum.MissingPunchCount++
		}
		sum.TotalInMinutes += d.TotalInMinutes
		sum.TotalOutMinutes += d.TotalOutMinutes
		sum.TotalSessions += row.SessionsCount
	}
	sortByName(resp.Rows, func(r types.DailyAllRow) (string, string) { return r.EmployeeName, r.CardNo })

	sum.TotalEmployees = len(resp.Rows)
	sum.TotalInHHMM = attendance.HHMM(sum.TotalInMinutes)
	sum.TotalOutHHMM = attendance.HHMM(sum.TotalOutMinutes)
	sum.TotalDurationHHMM = attendance.HHMM(sum.TotalDurationMinutes)
	sum.TotalDurationReadable = attendance.Readable(sum.TotalDurationMinutes)

	s.finish(ctx, store.ReportRun{
		Kind:           KindDailyAll,
		Period:         resp.Date,
		MappingVariant: state.MappingVariant,
		SwapApplied:    state.SwapApplied,
		RowCount:       len(resp.Rows),
	}, started, notes)
	return resp, nil
}

// MonthlyAll summarizes every active employee over a YYYY-MM month.
func (s *ReportService) MonthlyAll(ctx context.Context, month string) (types.PeriodAllReport, error) {
	started := s.now()
	start, end, label, err := attendance.ParseMonth(month)
	if err != nil {
		return types.PeriodAllReport{}, err
	}
	resp, state, err := s.periodAll(ctx, start, end)
	if err != nil {
		return types.PeriodAllReport{}, err
	}
	resp.Month = label

	s.finish(ctx, store.ReportRun{
		Kind:           KindMonthlyAll,
		Period:         label,
		MappingVariant: state.MappingVariant,
		SwapApplied:    state.SwapApplied,
		RowCount:       len(resp.Rows),
	}, started, 0)
	return resp, nil
}

// YearlyAll summarizes every active employee over a calendar year.
func (s *ReportService) YearlyAll(ctx context.Context, year string) (types.PeriodAllReport, error) {
	started := s.now()
	start, end, label, err := attendance.ParseYear(year)
	if err != nil {
		return types.PeriodAllReport{}, err
	}
	resp, state, err := s.periodAll(ctx, start, end)
	if err != nil {
		return types.PeriodAllReport{}, err
	}
	resp.Year = label

	s.finish(ctx, store.ReportRun{
		Kind:           KindYearlyAll,
		Period:         label,
		MappingVariant: state.MappingVariant,
		SwapApplied:    state.SwapApplied,
		RowCount:       len(resp.Rows),
	}, started, 0)
	return resp, nil
}

// periodAll builds the rows and summary shared by MonthlyAll and YearlyAll.
func (s *ReportService) periodAll(ctx context.Context, start, end time.Time) (types.PeriodAllReport, attendance.MappingState, error) {
	plan, state, err := s.resolve(ctx)
	if err != nil {
		return types.PeriodAllReport{}, attendance.MappingState{}, err
	}
	employees, err := s.directory.ActiveEmployees(ctx)
	if err != nil {
		return types.PeriodAllReport{}, state, fmt.Errorf("active employees: %w", err)
	}

	cutoff := s.engine.ShiftCutoff()
	from := start.Add(-dailyLookaround)
	to := end.Add(24*time.Hour + cutoff)
	byCard, err := s.events.EventsForActive(ctx, plan, from, to)
	if err != nil {
		return types.PeriodAllReport{}, state, fmt.Errorf("period events: %w", err)
	}

	swap := state.SwapApplied
	resp := types.PeriodAllReport{
		Rows:    make([]types.PeriodAllRow, 0, len(employees)),
		Mapping: mappingOf(state),
	}
	sum := &resp.Summary
	for _, emp := range employees {
		events := byCard[emp.CardNo]
		fold := attendance.FoldMonth(s.engine.BuildDays(events, start, end, swap))
		seg := attendance.AccumulateSegments(events, start, end, swap)
		ident := identityOf(emp)
		row := types.PeriodAllRow{
			EmployeeName:          ident.EmployeeName,
			CardNo:                ident.CardNo,
			Department:            ident.Department,
			WorkingDays:           fold.WorkedDays,
			TotalMinutes:          fold.TotalMinutes,
			TotalDurationHHMM:     attendance.HHMM(fold.TotalMinutes),
			TotalDurationReadable: attendance.Readable(fold.TotalMinutes),
			AvgMinutesPerDay:      attendance.AverageMinutes(fold.TotalMinutes, fold.WorkedDays),
			MissingPunchDays:      fold.MissingPunchDays,
			SessionsCount:         attendance.CountSessions(events, start, end.Add(cutoff), swap),
			TotalInMinutes:        seg.TotalInMinutes,
			TotalOutMinutes:       seg.TotalOutMinutes,
			TotalInHHMM:           attendance.HHMM(seg.TotalInMinutes),
			TotalOutHHMM:          attendance.HHMM(seg.TotalOutMinutes),
		}
		row.AvgDurationHHMM = attendance.HHMM(row.AvgMinutesPerDay)
		resp.Rows = append(resp.Rows, row)

		sum.TotalWorkingDays += row.WorkingDays
		sum.TotalInMinutes += row.TotalInMinutes
		sum.TotalOutMinutes += row.TotalOutMinutes
		sum.TotalWorkMinutes += row.TotalMinutes
		sum.TotalSessions += row.SessionsCount
		sum.MissingPunchCount += row.MissingPunchDays
	}
	sortByName(resp.Rows, func(r types.PeriodAllRow) (string, string) { return r.EmployeeName, r.CardNo })

	sum.TotalEmployees = len(resp.Rows)
	sum.TotalInHHMM = attendance.HHMM(sum.TotalInMinutes)
	sum.TotalOutHHMM = attendance.HHMM(sum.TotalOutMinutes)
	sum.TotalWorkHHMM = attendance.HHMM(sum.TotalWorkMinutes)
	sum.TotalWorkReadable = attendance.Readable(sum.TotalWorkMinutes)
	return resp, state, nil
}
