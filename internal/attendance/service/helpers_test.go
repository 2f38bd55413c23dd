package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/service"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store/memory"
)

type staticPlan struct {
	plan attendance.VariantPlan
	err  error
}

func (p staticPlan) Plan(context.Context) (attendance.VariantPlan, error) { return p.plan, p.err }

var inOutPlan = attendance.VariantPlan{
	Variant:    attendance.VariantInOutOnly,
	FlagSource: attendance.FlagFromEvent,
	FlagCol:    "InOut",
	Rule:       attendance.NormalizedRule(false),
}

type fixture struct {
	svc    *service.ReportService
	vendor *memory.Vendor
	local  *memory.Local
}

type fixtureOpts struct {
	plan       attendance.VariantPlan
	manualSwap bool
}

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation(attendance.TimestampLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", s, err)
	}
	return v
}

func punch(t *testing.T, s string, st attendance.State) attendance.RawEvent {
	return attendance.RawEvent{Time: ts(t, s), Flag: attendance.Flag(st)}
}

// newFixture seeds three active employees and one inactive one:
//
//	1001 Alice Moreau  normal shift with a break on 2025-03-10
//	1002 bob Night     overnight shift 2025-03-10 21:40 -> 03-11 04:00
//	1003 Chen Idle     no punches
//	1004 Dana Old      inactive, has an IN punch
func newFixture(t *testing.T, opts fixtureOpts) fixture {
	t.Helper()
	if opts.plan.Variant == "" {
		opts.plan = inOutPlan
	}

	vendor := memory.NewVendor()
	vendor.AddEmployee(attendance.Employee{EmployeeID: "E-1001", CardNo: "1001", Name: "Alice Moreau", Department: "Operations"}, true)
	vendor.AddEmployee(attendance.Employee{EmployeeID: "E-1002", CardNo: "1002", Name: "bob Night"}, true)
	vendor.AddEmployee(attendance.Employee{EmployeeID: "E-1003", CardNo: "1003", Name: "Chen Idle", Department: "Warehouse"}, true)
	vendor.AddEmployee(attendance.Employee{EmployeeID: "E-1004", CardNo: "1004", Name: "Dana Old"}, false)

	vendor.AddEvents("1001",
		punch(t, "2025-03-10 08:00:00", attendance.In),
		punch(t, "2025-03-10 09:00:00", attendance.Out),
		punch(t, "2025-03-10 09:30:00", attendance.In),
		punch(t, "2025-03-10 12:00:00", attendance.Out),
	)
	vendor.AddEvents("1002",
		punch(t, "2025-03-10 21:40:00", attendance.In),
		punch(t, "2025-03-11 04:00:00", attendance.Out),
	)
	vendor.AddEvents("1004", punch(t, "2025-03-10 08:00:00", attendance.In))

	local := memory.NewLocal()
	mapping := attendance.NewMappingResolver(vendor, local, attendance.MappingConfig{ManualSwap: opts.manualSwap})

	svc := service.NewReportService(service.Dependencies{
		Schema:    staticPlan{plan: opts.plan},
		Mapping:   mapping,
		Events:    vendor,
		Directory: vendor,
		Engine:    attendance.NewEngine(6 * time.Hour),
		Runs:      local,
		Snapshots: local,
	})
	svc.SetClock(func() time.Time { return ts(t, "2025-03-12 10:00:00") })
	return fixture{svc: svc, vendor: vendor, local: local}
}
