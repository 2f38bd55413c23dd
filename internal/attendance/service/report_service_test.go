package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/service"
)

// ── Per-card reports ────────────────────────────────────────────────────────

func TestDaily_NormalShiftWithBreak(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	r, err := f.svc.Daily(context.Background(), " 1001 ", "2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, "Alice Moreau", r.EmployeeName)
	assert.Equal(t, "1001", r.CardNo)
	require.NotNil(t, r.Department)
	assert.Equal(t, "Operations", *r.Department)

	require.NotNil(t, r.FirstIn)
	require.NotNil(t, r.LastOut)
	assert.Equal(t, "2025-03-10 08:00:00", *r.FirstIn)
	assert.Equal(t, "2025-03-10 12:00:00", *r.LastOut)
	require.NotNil(t, r.DurationMinutes)
	assert.Equal(t, 240, *r.DurationMinutes)
	assert.Equal(t, "04:00", *r.DurationHHMM)
	assert.Equal(t, "04:00", *r.Duration)
	assert.False(t, r.MissingPunch)

	assert.Equal(t, 210, r.TotalInMinutes)
	assert.Equal(t, 30, r.TotalOutMinutes)
	assert.Equal(t, "03:30", *r.TotalIn)
	assert.Equal(t, "00:30", *r.TotalOut)
	assert.Equal(t, 210, r.SegmentTotals.TotalInMinutes)
	require.NotNil(t, r.TotalWorkMinutes)
	assert.Equal(t, 240, *r.TotalWorkMinutes)

	require.Len(t, r.Transactions, 4)
	assert.Equal(t, "IN", r.Transactions[0].Type)
	assert.Equal(t, "OUT", r.Transactions[1].Type)
	assert.Equal(t, "09:00:00", r.Transactions[1].Time)

	require.Len(t, r.Intervals, 2)
	assert.Equal(t, 60, r.Intervals[0].InDurationMinutes)
	assert.Equal(t, "02:30", *r.Intervals[1].InDurationHHMM)
	require.Len(t, r.Rows, 2)
	assert.Equal(t, "08:00:00 AM", r.Rows[0].In)
	assert.Equal(t, "12:00:00 PM", r.Rows[1].Out)

	assert.NotNil(t, r.Notes)
	assert.Empty(t, r.Notes)
	assert.Equal(t, attendance.MappingNormal, r.MappingVariant)
	assert.False(t, r.SwapApplied)
}

func TestDaily_OvernightShift(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	r, err := f.svc.Daily(context.Background(), "1002", "2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, "2025-03-11 04:00:00", *r.LastOut)
	assert.Equal(t, 380, *r.DurationMinutes)
	assert.Equal(t, 380, r.TotalInMinutes)
	assert.Zero(t, r.TotalOutMinutes)
	assert.Nil(t, r.Department)
}

func TestDaily_MissingOutHasNoWorkMinutes(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.vendor.AddEvents("1003", punch(t, "2025-03-10 09:00:00", attendance.In))

	r, err := f.svc.Daily(context.Background(), "1003", "2025-03-10")
	require.NoError(t, err)

	assert.True(t, r.MissingPunch)
	assert.Nil(t, r.DurationMinutes)
	assert.Nil(t, r.Duration)
	assert.Nil(t, r.TotalWorkMinutes)
}

func TestDaily_UnknownCardFallsBackToCardNumber(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	r, err := f.svc.Daily(context.Background(), "7777", "2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, "7777", r.EmployeeName)
	assert.Nil(t, r.Department)
	assert.Nil(t, r.FirstIn)
	assert.Empty(t, r.Transactions)
	assert.NotNil(t, r.Rows)
}

func TestDaily_RecordsReportRun(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	_, err := f.svc.Daily(context.Background(), "1001", "2025-03-10")
	require.NoError(t, err)

	runs := f.local.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, service.KindDaily, runs[0].Kind)
	assert.Equal(t, "1001", runs[0].Subject)
	assert.Equal(t, "2025-03-10", runs[0].Period)
	assert.Equal(t, 4, runs[0].RowCount)
	assert.Equal(t, ts(t, "2025-03-12 10:00:00"), runs[0].RequestedAt)
}

func TestDaily_AuditFailureDoesNotFailReport(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.local.FailWith(errors.New("disk full"))

	r, err := f.svc.Daily(context.Background(), "1001", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 210, r.TotalInMinutes)
}

func TestDaily_ManualSwapInvertsPunches(t *testing.T) {
	f := newFixture(t, fixtureOpts{manualSwap: true})

	r, err := f.svc.Daily(context.Background(), "1001", "2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, attendance.MappingSwapped, r.MappingVariant)
	assert.True(t, r.SwapApplied)
	require.NotNil(t, r.FirstIn)
	assert.Equal(t, "2025-03-10 09:00:00", *r.FirstIn)
}

func TestMonthly_SingleCard(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	r, err := f.svc.Monthly(context.Background(), "1001", "2025-03")
	require.NoError(t, err)

	assert.Equal(t, "2025-03", r.Month)
	require.Len(t, r.Records, 1)
	assert.Equal(t, "2025-03-10", r.Records[0].Date)
	assert.Equal(t, 1, r.TotalDays)
	assert.Equal(t, 240, r.TotalMinutes)
	assert.Equal(t, "04:00", *r.TotalDurationHHMM)
	assert.Equal(t, 240, r.AvgMinutesPerDay)
	assert.Equal(t, "4.00", r.AvgHoursPerDay)
	assert.Equal(t, 210, r.SegmentTotals.TotalInMinutes)
	assert.Equal(t, 30, r.SegmentTotals.TotalOutMinutes)
}

func TestMonthly_OvernightLeavesOutOnlyNextDay(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	r, err := f.svc.Monthly(context.Background(), "1002", "2025-03")
	require.NoError(t, err)

	require.Len(t, r.Records, 2)
	assert.Equal(t, 380, *r.Records[0].DurationMinutes)
	assert.True(t, r.Records[1].MissingPunch)
	assert.Nil(t, r.Records[1].FirstIn)
	assert.Equal(t, 1, r.TotalDays)
	assert.Equal(t, 1, r.MissingPunchDays)
	assert.Equal(t, 380, r.TotalMinutes)
	assert.Equal(t, 380, r.SegmentTotals.TotalInMinutes)
}

func TestYearly_BucketsByMonth(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	r, err := f.svc.Yearly(context.Background(), "1001", "2025")
	require.NoError(t, err)

	assert.Equal(t, "2025", r.Year)
	require.Len(t, r.Months, 1)
	m := r.Months[0]
	assert.Equal(t, "2025-03", m.Month)
	assert.Equal(t, 1, m.WorkedDays)
	require.NotNil(t, m.AverageMinutesPerDay)
	assert.Equal(t, 240, *m.AverageMinutesPerDay)
	assert.Equal(t, "04:00", *m.AverageDurationHHMM)
	assert.Equal(t, 1, r.TotalWorkedDays)
	assert.Equal(t, 240, r.TotalMinutes)
}

// ── All-employee reports ────────────────────────────────────────────────────

func TestDailyAll(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	r, err := f.svc.DailyAll(context.Background(), "2025-03-10")
	require.NoError(t, err)

	require.Len(t, r.Rows, 3)
	assert.Equal(t, "Alice Moreau", r.Rows[0].EmployeeName)
	assert.Equal(t, "bob Night", r.Rows[1].EmployeeName)
	assert.Equal(t, "Chen Idle", r.Rows[2].EmployeeName)

	assert.Equal(t, 2, r.Rows[0].SessionsCount)
	assert.Equal(t, 210, r.Rows[0].TotalInMinutes)
	assert.Equal(t, 380, *r.Rows[1].DurationMinutes)
	assert.Nil(t, r.Rows[2].FirstIn)
	assert.Zero(t, r.Rows[2].SessionsCount)

	s := r.Summary
	assert.Equal(t, 3, s.TotalEmployees)
	assert.Equal(t, 2, s.TotalWorkingDays)
	assert.Equal(t, 590, s.TotalInMinutes)
	assert.Equal(t, 30, s.TotalOutMinutes)
	assert.Equal(t, 620, s.TotalDurationMinutes)
	assert.Equal(t, 3, s.TotalSessions)
	assert.Zero(t, s.MissingPunchCount)
	assert.Equal(t, "10 Hrs 20 Mins", *s.TotalDurationReadable)
}

func TestDailyAll_WorkingDaysNeedADuration(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.vendor.AddEvents("1003", punch(t, "2025-03-10 09:00:00", attendance.In))

	r, err := f.svc.DailyAll(context.Background(), "2025-03-10")
	require.NoError(t, err)

	require.NotNil(t, r.Rows[2].FirstIn)
	assert.Nil(t, r.Rows[2].DurationMinutes)
	assert.Equal(t, 2, r.Summary.TotalWorkingDays)
	assert.Equal(t, 1, r.Summary.MissingPunchCount)
}

func TestMonthlyAll(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	r, err := f.svc.MonthlyAll(context.Background(), "2025-03")
	require.NoError(t, err)

	assert.Equal(t, "2025-03", r.Month)
	assert.Empty(t, r.Year)
	require.Len(t, r.Rows, 3)

	alice, bob := r.Rows[0], r.Rows[1]
	assert.Equal(t, 1, alice.WorkingDays)
	assert.Equal(t, 240, alice.AvgMinutesPerDay)
	assert.Equal(t, 2, alice.SessionsCount)
	assert.Equal(t, 30, alice.TotalOutMinutes)

	assert.Equal(t, 1, bob.MissingPunchDays)
	assert.Equal(t, 1, bob.SessionsCount)
	assert.Equal(t, 380, bob.TotalInMinutes)

	assert.Zero(t, r.Rows[2].AvgMinutesPerDay)

	s := r.Summary
	assert.Equal(t, 3, s.TotalEmployees)
	assert.Equal(t, 2, s.TotalWorkingDays)
	assert.Equal(t, 620, s.TotalWorkMinutes)
	assert.Equal(t, 3, s.TotalSessions)
	assert.Equal(t, 1, s.MissingPunchCount)
	assert.Equal(t, "10:20", *s.TotalWorkHHMM)
}

func TestMonthlyAll_SegmentCrossingMonthEndIsClipped(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.vendor.AddEvents("1003",
		punch(t, "2025-03-31 20:00:00", attendance.In),
		punch(t, "2025-04-01 02:00:00", attendance.Out),
	)

	r, err := f.svc.MonthlyAll(context.Background(), "2025-03")
	require.NoError(t, err)

	chen := r.Rows[2]
	require.Equal(t, "1003", chen.CardNo)
	assert.Equal(t, 240, chen.TotalInMinutes)
	assert.Zero(t, chen.TotalOutMinutes)
	assert.Equal(t, 360, chen.TotalMinutes)
	assert.Equal(t, 1, chen.WorkingDays)
}

func TestYearlyAll(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	r, err := f.svc.YearlyAll(context.Background(), "2025")
	require.NoError(t, err)

	assert.Equal(t, "2025", r.Year)
	assert.Equal(t, 620, r.Summary.TotalWorkMinutes)

	runs := f.local.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, service.KindYearlyAll, runs[0].Kind)
	assert.Equal(t, 3, runs[0].RowCount)
}

// ── Dashboard, directory, mapping ───────────────────────────────────────────

func TestDashboard_CountsLatestState(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	d, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, d.TotalEmployees)
	assert.Zero(t, d.InCount)
	assert.Equal(t, 2, d.OutCount)
	assert.Equal(t, 1, d.UnknownCount)
	assert.Equal(t, "2025-03-12 10:00:00", d.GeneratedAt)
}

func TestDashboard_AppliesSwap(t *testing.T) {
	f := newFixture(t, fixtureOpts{manualSwap: true})

	d, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, d.InCount)
	assert.Zero(t, d.OutCount)
	assert.Equal(t, 1, d.UnknownCount)
}

func TestSearchEmployees(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	list, err := f.svc.SearchEmployees(context.Background(), "ALI")
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "E-1001", list.Employees[0].EmpID)
	assert.Equal(t, "E-1001", list.Employees[0].EmployeeID)

	all, err := f.svc.SearchEmployees(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, 3, all.Count)
}

func TestMapping_ReportsSnapshots(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	m, err := f.svc.Mapping(context.Background())
	require.NoError(t, err)

	assert.Equal(t, attendance.MappingNormal, m.MappingVariant)
	assert.Equal(t, string(attendance.VariantInOutOnly), m.DetectorVariant)
	require.Len(t, m.Snapshots, 1)
	assert.Equal(t, 7, m.Snapshots[0].Samples)
	assert.False(t, m.Snapshots[0].SwapApplied)
}

// ── Unsupported variant ─────────────────────────────────────────────────────

func TestUnsupportedVariant_ZeroFilledReports(t *testing.T) {
	f := newFixture(t, fixtureOpts{plan: attendance.VariantPlan{Variant: attendance.VariantUnsupported}})
	ctx := context.Background()

	d, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalEmployees)
	assert.Equal(t, 3, d.UnknownCount)
	assert.Zero(t, d.InCount+d.OutCount)

	daily, err := f.svc.Daily(ctx, "1001", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, attendance.MappingUnsupported, daily.MappingVariant)
	assert.Nil(t, daily.FirstIn)
	assert.NotNil(t, daily.Transactions)
	assert.NotNil(t, daily.Notes)

	monthly, err := f.svc.Monthly(ctx, "1001", "2025-03")
	require.NoError(t, err)
	assert.Empty(t, monthly.Records)
	assert.NotNil(t, monthly.Records)
	assert.Zero(t, monthly.TotalMinutes)
	assert.Equal(t, "0.00", monthly.AvgHoursPerDay)

	all, err := f.svc.MonthlyAll(ctx, "2025-03")
	require.NoError(t, err)
	assert.Len(t, all.Rows, 3)
	assert.Zero(t, all.Summary.TotalWorkMinutes)
}

// ── Errors ──────────────────────────────────────────────────────────────────

func TestReports_ValidationErrors(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	_, err := f.svc.Daily(ctx, " ", "2025-03-10")
	assert.ErrorIs(t, err, service.ErrCardRequired)
	assert.True(t, service.IsValidationError(err))

	_, err = f.svc.Daily(ctx, "1001", "10/03/2025")
	assert.ErrorIs(t, err, attendance.ErrInvalidDate)

	_, err = f.svc.MonthlyAll(ctx, "2025-13")
	assert.ErrorIs(t, err, attendance.ErrInvalidMonth)

	_, err = f.svc.Yearly(ctx, "1001", "1800")
	assert.ErrorIs(t, err, attendance.ErrYearOutOfRange)
	assert.True(t, service.IsValidationError(err))

	assert.Empty(t, f.local.Runs())
}

func TestReports_VendorFailurePropagates(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	boom := errors.New("vendor down")
	f.vendor.FailWith(boom)

	_, err := f.svc.DailyAll(context.Background(), "2025-03-10")
	require.ErrorIs(t, err, boom)
	assert.False(t, service.IsValidationError(err))
}

func TestReports_SchemaFailurePropagates(t *testing.T) {
	boom := errors.New("no metadata")
	svc := service.NewReportService(service.Dependencies{
		Schema: staticPlan{err: boom},
	})

	_, err := svc.Mapping(context.Background())
	require.ErrorIs(t, err, boom)
}
