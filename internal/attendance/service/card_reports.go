package service

import (
	"context"
	"fmt"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/types"
)

// Daily reconciles one card on one date.
func (s *ReportService) Daily(ctx context.Context, cardNo, date string) (types.DailyReport, error) {
	started := s.now()
	cardNo, err := cardParam(cardNo)
	if err != nil {
		return types.DailyReport{}, err
	}
	day, err := attendance.ParseDate(date)
	if err != nil {
		return types.DailyReport{}, err
	}

	plan, state, err := s.resolve(ctx)
	if err != nil {
		return types.DailyReport{}, err
	}
	ident, err := s.identity(ctx, cardNo)
	if err != nil {
		return types.DailyReport{}, err
	}

	from := day.Add(-dailyLookaround)
	to := day.Add(24*time.Hour + dailyLookaround)
	events, err := s.events.EventsForCard(ctx, plan, cardNo, from, to)
	if err != nil {
		return types.DailyReport{}, fmt.Errorf("daily events: %w", err)
	}

	detail := s.engine.ReconcileDay(day, events, state.SwapApplied)
	resp := dailyReport(ident, detail)
	resp.Mapping = mappingOf(state)

	s.finish(ctx, store.ReportRun{
		Kind:           KindDaily,
		Subject:        cardNo,
		Period:         detail.Date,
		MappingVariant: state.MappingVariant,
		SwapApplied:    state.SwapApplied,
		RowCount:       len(detail.Transactions),
	}, started, len(detail.Notes))
	return resp, nil
}

func dailyReport(ident types.Identity, d attendance.DayDetail) types.DailyReport {
	r := types.DailyReport{
		Identity:         ident,
		Date:             d.Date,
		FirstIn:          attendance.FormatTimestamp(d.FirstIn),
		LastOut:          attendance.FormatTimestamp(d.LastOut),
		DurationMinutes:  d.DurationMinutes,
		DurationHHMM:     attendance.MinutesToHHMM(d.DurationMinutes),
		Duration:         attendance.MinutesToHHMM(d.DurationMinutes),
		MissingPunch:     d.MissingPunch,
		MissingOut:       d.MissingOut,
		TotalWorkMinutes: d.DurationMinutes,
		Notes:            append([]string{}, d.Notes...),
		Rows:             make([]types.SessionRow, 0, len(d.Intervals)),
		Transactions:     make([]types.Transaction, 0, len(d.Transactions)),
		Intervals:        make([]types.Interval, 0, len(d.Intervals)),
		TotalInMinutes:   d.TotalInMinutes,
		TotalOutMinutes:  d.TotalOutMinutes,
		TotalIn:          attendance.HHMM(d.TotalInMinutes),
		TotalOut:         attendance.HHMM(d.TotalOutMinutes),
		SegmentTotals:    segmentTotals(d.TotalInMinutes, d.TotalOutMinutes),
	}

	for _, tx := range d.Transactions {
		r.Transactions = append(r.Transactions, types.Transaction{
			Type:      tx.State.String(),
			Time:      attendance.FormatClock(tx.Time),
			Timestamp: tx.Time.Format(attendance.TimestampLayout),
			Inferred:  tx.Inferred,
		})
	}
	for _, iv := range d.Intervals {
		inTS := iv.In.Format(attendance.TimestampLayout)
		outTS := iv.Out.Format(attendance.TimestampLayout)
		r.Intervals = append(r.Intervals, types.Interval{
			Date:              iv.Date,
			In:                inTS,
			Out:               outTS,
			InTime:            attendance.FormatClock(iv.In),
			OutTime:           attendance.FormatClock(iv.Out),
			InDurationMinutes: iv.Minutes,
			InDurationHHMM:    attendance.HHMM(iv.Minutes),
		})
		r.Rows = append(r.Rows, types.SessionRow{
			Date:            iv.Date,
			In:              attendance.Format12h(iv.In),
			Out:             attendance.Format12h(iv.Out),
			Duration:        attendance.HHMM(iv.Minutes),
			InRaw:           inTS,
			OutRaw:          outTS,
			DurationMinutes: iv.Minutes,
		})
	}
	return r
}

// cardPeriod is the shared fetch for the monthly and yearly card reports.
type cardPeriod struct {
	ident    types.Identity
	state    attendance.MappingState
	records  []attendance.DayRecord
	segments attendance.PeriodTotals
}

func (s *ReportService) loadCardPeriod(ctx context.Context, cardNo string, start, end time.Time) (cardPeriod, error) {
	plan, state, err := s.resolve(ctx)
	if err != nil {
		return cardPeriod{}, err
	}
	ident, err := s.identity(ctx, cardNo)
	if err != nil {
		return cardPeriod{}, err
	}

	to := end.Add(24*time.Hour + s.engine.ShiftCutoff())
	events, err := s.events.EventsForCard(ctx, plan, cardNo, start, to)
	if err != nil {
		return cardPeriod{}, fmt.Errorf("period events: %w", err)
	}
	anchor, err := s.events.LastEventBefore(ctx, plan, cardNo, start)
	if err != nil {
		return cardPeriod{}, fmt.Errorf("period anchor: %w", err)
	}

	swap := state.SwapApplied
	return cardPeriod{
		ident:    ident,
		state:    state,
		records:  s.engine.BuildDays(events, start, end, swap),
		segments: attendance.AccumulateSegments(segmentEvents(anchor, events, end), start, end, swap),
	}, nil
}

// Monthly summarizes one card over a YYYY-MM month.
func (s *ReportService) Monthly(ctx context.Context, cardNo, month string) (types.MonthlyReport, error) {
	started := s.now()
	cardNo, err := cardParam(cardNo)
	if err != nil {
		return types.MonthlyReport{}, err
	}
	start, end, label, err := attendance.ParseMonth(month)
	if err != nil {
		return types.MonthlyReport{}, err
	}

	p, err := s.loadCardPeriod(ctx, cardNo, start, end)
	if err != nil {
		return types.MonthlyReport{}, err
	}
	sum := attendance.FoldMonth(p.records)
	avg := sum.AvgMinutesPerWorkedDay

	resp := types.MonthlyReport{
		Identity:              p.ident,
		Month:                 label,
		Records:               make([]types.DayRecord, 0, len(p.records)),
		TotalDays:             sum.WorkedDays,
		MissingPunchDays:      sum.MissingPunchDays,
		TotalMinutes:          sum.TotalMinutes,
		TotalDurationHHMM:     attendance.HHMM(sum.TotalMinutes),
		TotalDurationReadable: attendance.Readable(sum.TotalMinutes),
		TotalWorkMinutes:      sum.TotalMinutes,
		AvgMinutesPerDay:      avg,
		AvgDurationHHMM:       attendance.HHMM(avg),
		AvgHoursPerDay:        sum.AvgHoursPerWorkedDay.StringFixed(2),
		SegmentTotals:         segmentTotals(p.segments.TotalInMinutes, p.segments.TotalOutMinutes),
		Mapping:               mappingOf(p.state),
	}
	for _, rec := range p.records {
		resp.Records = append(resp.Records, types.DayRecord{
			Date:            rec.Date,
			FirstIn:         attendance.FormatTimestamp(rec.FirstIn),
			LastOut:         attendance.FormatTimestamp(rec.LastOut),
			DurationMinutes: rec.DurationMinutes,
			DurationHHMM:    attendance.MinutesToHHMM(rec.DurationMinutes),
			MissingPunch:    rec.MissingPunch,
		})
	}

	s.finish(ctx, store.ReportRun{
		Kind:           KindMonthly,
		Subject:        cardNo,
		Period:         label,
		MappingVariant: p.state.MappingVariant,
		SwapApplied:    p.state.SwapApplied,
		RowCount:       len(resp.Records),
	}, started, 0)
	return resp, nil
}

// Yearly summarizes one card over a calendar year, bucketed by month.
func (s *ReportService) Yearly(ctx context.Context, cardNo, year string) (types.YearlyReport, error) {
	started := s.now()
	cardNo, err := cardParam(cardNo)
	if err != nil {
		return types.YearlyReport{}, err
	}
	start, end, label, err := attendance.ParseYear(year)
	if err != nil {
		return types.YearlyReport{}, err
	}

	p, err := s.loadCardPeriod(ctx, cardNo, start, end)
	if err != nil {
		return types.YearlyReport{}, err
	}
	sum := attendance.FoldYear(p.records)

	resp := types.YearlyReport{
		Identity:              p.ident,
		Year:                  label,
		Months:                make([]types.MonthBucket, 0, len(sum.Months)),
		TotalWorkedDays:       sum.WorkedDays,
		MissingPunchDays:      sum.MissingPunchDays,
		TotalMinutes:          sum.TotalMinutes,
		TotalDurationHHMM:     attendance.HHMM(sum.TotalMinutes),
		TotalDurationReadable: attendance.Readable(sum.TotalMinutes),
		TotalWorkMinutes:      sum.TotalMinutes,
		SegmentTotals:         segmentTotals(p.segments.TotalInMinutes, p.segments.TotalOutMinutes),
		Mapping:               mappingOf(p.state),
	}
	for _, b := range sum.Months {
		resp.Months = append(resp.Months, types.MonthBucket{
			Month:                 b.Month,
			WorkedDays:            b.WorkedDays,
			MissingPunchDays:      b.MissingPunchDays,
			TotalMinutes:          b.TotalMinutes,
			AverageMinutesPerDay:  b.AverageMinutesPerDay,
			AverageDurationHHMM:   attendance.MinutesToHHMM(b.AverageMinutesPerDay),
			TotalDurationHHMM:     attendance.HHMM(b.TotalMinutes),
			TotalDurationReadable: attendance.Readable(b.TotalMinutes),
		})
	}

	s.finish(ctx, store.ReportRun{
		Kind:           KindYearly,
		Subject:        cardNo,
		Period:         label,
		MappingVariant: p.state.MappingVariant,
		SwapApplied:    p.state.SwapApplied,
		RowCount:       len(resp.Months),
	}, started, 0)
	return resp, nil
}
