package attendance_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
)

func typed(pairs ...string) []attendance.ColumnInfo {
	out := make([]attendance.ColumnInfo, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, attendance.ColumnInfo{Name: pairs[i], DataType: pairs[i+1]})
	}
	return out
}

func baseMetadata() attendance.Metadata {
	return attendance.Metadata{
		Tables: []string{"TEmployee", "TEvent", "TEventType", "TDepartment"},
		Columns: map[string][]attendance.ColumnInfo{
			"TEmployee": typed(
				"EmpID", "int", "CardNo", "varchar", "EmployeeCode", "varchar",
				"EmployeeName", "nvarchar", "DepartmentID", "int",
				"EmpEnable", "bit", "Deleted", "bit", "Leave", "bit", "IsVisitor", "bit",
			),
			"TEvent":      typed("EventID", "int", "CardNo", "varchar", "EventTime", "datetime", "EventType", "int"),
			"TEventType":  typed("EventID", "int", "InOut", "int", "Event", "varchar"),
			"TDepartment": typed("DepartmentID", "int", "DepartmentName", "nvarchar"),
		},
	}
}

func TestResolveSchema_FullVendorLayout(t *testing.T) {
	m, err := attendance.ResolveSchema(baseMetadata())
	require.NoError(t, err)

	assert.Equal(t, "EmployeeName", m.NameCol)
	assert.Equal(t, "EmployeeCode", m.EmployeeIDCol)
	assert.Equal(t, attendance.EmployeeIDSourceCode, m.EmployeeIDSource)
	assert.Equal(t, "CardNo", m.CardCol)
	assert.Equal(t, "IsVisitor", m.VisitorCol)
	assert.Equal(t, "EventTime", m.EventTimeCol)
	assert.True(t, m.HasEventColumns())

	require.NotNil(t, m.DepartmentLookup)
	assert.Equal(t, attendance.DepartmentLookup{
		Table:       "TDepartment",
		KeyCol:      "DepartmentID",
		NameCol:     "DepartmentName",
		EmployeeCol: "DepartmentID",
	}, *m.DepartmentLookup)
}

func TestResolveSchema_MissingEmployeeCodeIsFlagged(t *testing.T) {
	md := baseMetadata()
	md.Columns["TEmployee"] = typed("EmpID", "int", "CardNo", "varchar", "Name", "varchar")

	m, err := attendance.ResolveSchema(md)
	require.NoError(t, err)

	assert.Empty(t, m.EmployeeIDCol)
	assert.Equal(t, attendance.EmployeeIDSourceMissing, m.EmployeeIDSource)
	assert.Equal(t, "Name", m.NameCol)
}

func TestResolveSchema_TextDepartmentNeedsNoLookup(t *testing.T) {
	md := baseMetadata()
	md.Columns["TEmployee"] = typed("CardNo", "varchar", "Department", "nvarchar")

	m, err := attendance.ResolveSchema(md)
	require.NoError(t, err)

	assert.Equal(t, "Department", m.DepartmentCol)
	assert.Nil(t, m.DepartmentLookup)
}

func TestResolveSchema_NumericDepartmentWithoutLookupTable(t *testing.T) {
	md := baseMetadata()
	md.Tables = []string{"TEmployee", "TEvent"}
	delete(md.Columns, "TDepartment")

	m, err := attendance.ResolveSchema(md)
	require.NoError(t, err)

	assert.Equal(t, "DepartmentID", m.DepartmentCol)
	assert.Nil(t, m.DepartmentLookup)
}

func TestResolveSchema_LookupTableByPattern(t *testing.T) {
	md := baseMetadata()
	md.Tables = []string{"temployee", "TEvent", "HR_Dept_Master"}
	md.Columns["temployee"] = md.Columns["TEmployee"]
	delete(md.Columns, "TEmployee")
	delete(md.Columns, "TDepartment")
	md.Columns["HR_Dept_Master"] = typed("DeptNo", "int", "Description", "varchar")

	m, err := attendance.ResolveSchema(md)
	require.NoError(t, err)

	assert.Equal(t, "temployee", m.EmployeeTable)
	require.NotNil(t, m.DepartmentLookup)
	assert.Equal(t, "HR_Dept_Master", m.DepartmentLookup.Table)
	assert.Equal(t, "DeptNo", m.DepartmentLookup.KeyCol)
	assert.Equal(t, "Description", m.DepartmentLookup.NameCol)
}

func TestResolveSchema_MissingEmployeeTable(t *testing.T) {
	_, err := attendance.ResolveSchema(attendance.Metadata{Tables: []string{"TEvent"}})
	assert.ErrorIs(t, err, attendance.ErrEmployeeTableMissing)
}

// =============================================================================
// RESOLVER CACHING
// =============================================================================

type fakeMetadata struct {
	mu     sync.Mutex
	md     attendance.Metadata
	err    error
	tables int
}

func (f *fakeMetadata) Tables(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables++
	if f.err != nil {
		return nil, f.err
	}
	return f.md.Tables, nil
}

func (f *fakeMetadata) Columns(_ context.Context, table string) ([]attendance.ColumnInfo, error) {
	return f.md.Columns[table], nil
}

func TestSchemaResolver_ResolvesOnce(t *testing.T) {
	src := &fakeMetadata{md: baseMetadata()}
	r := attendance.NewSchemaResolver(src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Get(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.tables)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, attendance.VariantEventTypeJoin, plan.Variant)
	assert.True(t, r.Resolved())
}

func TestSchemaResolver_FailureIsRetried(t *testing.T) {
	src := &fakeMetadata{md: baseMetadata(), err: errors.New("login failed")}
	r := attendance.NewSchemaResolver(src)

	_, err := r.Get(context.Background())
	require.Error(t, err)
	assert.False(t, r.Resolved())

	src.err = nil
	m, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TEmployee", m.EmployeeTable)
	assert.Equal(t, 2, src.tables)
}
