package vendorsql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
)

func TestActiveWhere_OnlyResolvedColumns(t *testing.T) {
	b := newBuilder(attendance.SchemaMapping{CardCol: "CardNo", EmpEnableCol: "EmpEnable"}, SQLite())
	where := b.activeWhere()

	assert.Contains(t, where, `emp."EmpEnable" = 1`)
	assert.NotContains(t, where, "Deleted")
	assert.Contains(t, where, `NOT IN ('', '0')`)

	b = newBuilder(attendance.SchemaMapping{CardCol: "CardNo", DeletedCol: "Deleted", VisitorCol: "IsVisitor"}, SQLite())
	where = b.activeWhere()
	assert.Contains(t, where, `(emp."Deleted" = 0 OR emp."Deleted" IS NULL)`)
	assert.Contains(t, where, `emp."IsVisitor"`)
	assert.NotContains(t, where, "EmpEnable")
}

func TestSearchPredicate_BindsEachUse(t *testing.T) {
	m := attendance.SchemaMapping{CardCol: "CardNo", NameCol: "Name", EmployeeIDCol: "EmployeeCode"}

	b := newBuilder(m, Postgres())
	pred := b.searchPredicate("50%_off")
	assert.Len(t, b.args, 3)
	assert.Equal(t, `%50\%\_off%`, b.args[0])
	for _, p := range []string{"$1", "$2", "$3"} {
		assert.Contains(t, pred, p)
	}

	b = newBuilder(attendance.SchemaMapping{CardCol: "CardNo"}, SQLite())
	pred = b.searchPredicate("x")
	assert.Len(t, b.args, 1)
	assert.Equal(t, 1, strings.Count(pred, "?"))
}

func TestDepartmentParts(t *testing.T) {
	m := attendance.SchemaMapping{CardCol: "CardNo", DepartmentCol: "DeptID"}
	expr, join := newBuilder(m, SQLite()).departmentParts()
	assert.Contains(t, expr, `emp."DeptID"`)
	assert.Empty(t, join)

	m.DepartmentLookup = &attendance.DepartmentLookup{Table: "TDept", KeyCol: "ID", NameCol: "Name", EmployeeCol: "DeptID"}
	expr, join = newBuilder(m, SQLite()).departmentParts()
	assert.Contains(t, expr, `dept."Name"`)
	assert.Equal(t, `LEFT JOIN "TDept" dept ON emp."DeptID" = dept."ID"`, join)
}

func TestFlagColumns(t *testing.T) {
	flag, fallback := flagColumns(attendance.VariantPlan{Variant: attendance.VariantUnsupported})
	assert.Equal(t, "CAST(NULL AS TEXT)", flag)
	assert.Equal(t, "CAST(NULL AS TEXT)", fallback)

	flag, fallback = flagColumns(attendance.VariantPlan{
		Variant: attendance.VariantEventTypeJoin, FlagSource: attendance.FlagFromEventType,
		FlagCol: "InOut", FallbackCol: "Event",
	})
	assert.Equal(t, `CAST(et."InOut" AS TEXT)`, flag)
	assert.Equal(t, `CAST(et."Event" AS TEXT)`, fallback)
}

func TestParseDBTime(t *testing.T) {
	want := "2025-03-10 21:40:05"
	for _, v := range []any{
		"2025-03-10 21:40:05",
		[]byte("2025-03-10T21:40:05"),
		"2025-03-10 21:40:05+02:00",
	} {
		got, ok := parseDBTime(v)
		if assert.True(t, ok, "%v", v) {
			assert.Equal(t, want, got.Format("2006-01-02 15:04:05"))
		}
	}
	_, ok := parseDBTime(42)
	assert.False(t, ok)
	assert.Equal(t, "42", normalizeEmployeeID("0042"))
	assert.Equal(t, "E-7", normalizeEmployeeID("E-7"))
}
