package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

var ErrEmployeeTableMissing = errors.New("employee table is not accessible")

// Canonical vendor table names.
const (
	EmployeeTable  = "TEmployee"
	EventTable     = "TEvent"
	EventTypeTable = "TEventType"
)

// Employee id source tags.
const (
	EmployeeIDSourceCode    = "EMPLOYEECODE"
	EmployeeIDSourceMissing = "MISSING_EMPLOYEECODE"
)

var (
	nameColumnCandidates = []string{
		"EmployeeName", "EnglishName", "Name", "EmpName", "EName", "UserName", "User",
	}
	employeeIDCandidates = []string{"EmployeeCode", "EMPLOYEECODE"}

	departmentColumnCandidates = []string{
		"Department", "DepartmentName", "DeptName", "Dept", "DepName",
	}
	departmentRefColumnCandidates = []string{
		"DepartmentID", "DeptID", "DepID", "Department", "Dept", "DepartmentNo", "DeptNo", "DepNo",
	}
	departmentTableCandidates = []string{
		"TDepartment", "Department", "TDept", "Dept", "TBDepartment",
	}
	departmentKeyCandidates = []string{
		"DepartmentID", "DeptID", "DepID", "DepartmentNo", "DeptNo", "DepNo", "Department", "Dept",
	}
	departmentNameCandidates = []string{
		"DepartmentName", "DeptName", "DepName", "Department", "Dept", "Name", "Description",
	}

	numericSQLTypes = map[string]struct{}{
		"bigint": {}, "int": {}, "integer": {}, "smallint": {}, "tinyint": {},
		"decimal": {}, "numeric": {}, "float": {}, "real": {}, "double precision": {},
		"money": {}, "smallmoney": {},
	}
)

// ColumnInfo is one column as reported by the metadata source.
type ColumnInfo struct {
	Name     string
	DataType string
}

// MetadataSource exposes raw table/column metadata of the vendor database.
type MetadataSource interface {
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)
}

// Metadata is a snapshot of the tables relevant to schema resolution.
// Columns is keyed by the table name exactly as listed in Tables.
type Metadata struct {
	Tables  []string
	Columns map[string][]ColumnInfo
}

// DepartmentLookup describes a join from the employee table to a
// department name table.
type DepartmentLookup struct {
	Table       string
	KeyCol      string
	NameCol     string
	EmployeeCol string
}

// SchemaMapping holds the resolved vendor column names.
type SchemaMapping struct {
	EmployeeTable  string
	EventTable     string
	EventTypeTable string

	EmployeeColumns  []ColumnInfo
	EventColumns     []ColumnInfo
	EventTypeColumns []ColumnInfo

	NameCol          string
	DepartmentCol    string
	DepartmentLookup *DepartmentLookup
	EmployeeIDCol    string
	EmployeeIDSource string

	EmpIDCol     string
	CardCol      string
	EmpEnableCol string
	DeletedCol   string
	LeaveCol     string
	VisitorCol   string

	EventEmpIDCol string
	EventCardCol  string
	EventTimeCol  string
}

var folder = cases.Fold()

func foldName(s string) string { return folder.String(strings.TrimSpace(s)) }

// pickFirst returns the existing column matching the earliest candidate,
// compared case-insensitively, or "".
func pickFirst(existing []ColumnInfo, candidates ...string) string {
	byFold := make(map[string]string, len(existing))
	for _, c := range existing {
		k := foldName(c.Name)
		if _, ok := byFold[k]; !ok {
			byFold[k] = c.Name
		}
	}
	for _, cand := range candidates {
		if found, ok := byFold[foldName(cand)]; ok {
			return found
		}
	}
	return ""
}

func findTable(tables []string, name string) string {
	want := foldName(name)
	for _, t := range tables {
		if foldName(t) == want {
			return t
		}
	}
	return ""
}

func columnType(cols []ColumnInfo, name string) string {
	want := foldName(name)
	for _, c := range cols {
		if foldName(c.Name) == want {
			return strings.ToLower(strings.TrimSpace(c.DataType))
		}
	}
	return ""
}

func isNumericType(dataType string) bool {
	// Strip any length/precision suffix such as decimal(10,2).
	if i := strings.IndexByte(dataType, '('); i >= 0 {
		dataType = dataType[:i]
	}
	_, ok := numericSQLTypes[strings.TrimSpace(dataType)]
	return ok
}

// LoadMetadata snapshots the vendor tables needed by ResolveSchema: the
// employee, event and event-type tables plus every department candidate.
func LoadMetadata(ctx context.Context, src MetadataSource) (Metadata, error) {
	tables, err := src.Tables(ctx)
	if err != nil {
		return Metadata{}, fmt.Errorf("list tables: %w", err)
	}
	md := Metadata{Tables: tables, Columns: make(map[string][]ColumnInfo)}
	for _, t := range departmentCandidateTables(tables) {
		cols, err := src.Columns(ctx, t)
		if err != nil {
			return Metadata{}, fmt.Errorf("columns of %s: %w", t, err)
		}
		md.Columns[t] = cols
	}
	for _, name := range []string{EmployeeTable, EventTable, EventTypeTable} {
		t := findTable(tables, name)
		if t == "" {
			continue
		}
		cols, err := src.Columns(ctx, t)
		if err != nil {
			return Metadata{}, fmt.Errorf("columns of %s: %w", t, err)
		}
		md.Columns[t] = cols
	}
	return md, nil
}

// departmentCandidateTables orders lookup tables: named candidates first,
// then any table mentioning dept/department. The employee table is skipped.
func departmentCandidateTables(tables []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(t string) {
		if t == "" || foldName(t) == foldName(EmployeeTable) {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, cand := range departmentTableCandidates {
		add(findTable(tables, cand))
	}
	for _, t := range tables {
		lowered := foldName(t)
		if strings.Contains(lowered, "dept") || strings.Contains(lowered, "department") {
			add(t)
		}
	}
	return out
}

// ResolveSchema maps a metadata snapshot to canonical column names.
func ResolveSchema(md Metadata) (SchemaMapping, error) {
	empTable := findTable(md.Tables, EmployeeTable)
	empCols := md.Columns[empTable]
	if empTable == "" || len(empCols) == 0 {
		return SchemaMapping{}, ErrEmployeeTableMissing
	}

	m := SchemaMapping{
		EmployeeTable:   empTable,
		EmployeeColumns: empCols,
	}
	if t := findTable(md.Tables, EventTable); t != "" {
		m.EventTable = t
		m.EventColumns = md.Columns[t]
	}
	if t := findTable(md.Tables, EventTypeTable); t != "" {
		m.EventTypeTable = t
		m.EventTypeColumns = md.Columns[t]
	}

	m.NameCol = pickFirst(empCols, nameColumnCandidates...)
	if col := pickFirst(empCols, employeeIDCandidates...); col != "" {
		m.EmployeeIDCol = col
		m.EmployeeIDSource = EmployeeIDSourceCode
	} else {
		m.EmployeeIDSource = EmployeeIDSourceMissing
	}

	m.DepartmentCol = pickFirst(empCols, departmentRefColumnCandidates...)
	if m.DepartmentCol == "" {
		m.DepartmentCol = pickFirst(empCols, departmentColumnCandidates...)
	}
	m.DepartmentLookup = resolveDepartmentLookup(md, empCols)

	m.EmpIDCol = pickFirst(empCols, "EmpID")
	if m.EmpIDCol == "" {
		m.EmpIDCol = m.EmployeeIDCol
	}
	m.CardCol = orDefault(pickFirst(empCols, "CardNo"), "CardNo")
	m.EmpEnableCol = pickFirst(empCols, "EmpEnable")
	m.DeletedCol = pickFirst(empCols, "Deleted")
	m.LeaveCol = pickFirst(empCols, "Leave")
	m.VisitorCol = pickFirst(empCols, "isVisitor", "IsVisitor")

	m.EventEmpIDCol = pickFirst(m.EventColumns, "EmpID")
	m.EventCardCol = pickFirst(m.EventColumns, "CardNo")
	m.EventTimeCol = pickFirst(m.EventColumns, "EventTime")

	return m, nil
}

func resolveDepartmentLookup(md Metadata, empCols []ColumnInfo) *DepartmentLookup {
	empDeptCol := pickFirst(empCols, departmentRefColumnCandidates...)
	if empDeptCol == "" {
		return nil
	}
	if !isNumericType(columnType(empCols, empDeptCol)) {
		// Text column already holds the department name.
		return nil
	}

	for _, table := range departmentCandidateTables(md.Tables) {
		cols := md.Columns[table]
		if len(cols) == 0 {
			continue
		}
		keyCol := pickFirst(cols, append([]string{empDeptCol}, departmentKeyCandidates...)...)
		nameCol := pickFirst(cols, departmentNameCandidates...)
		if keyCol != "" && nameCol != "" && foldName(keyCol) != foldName(nameCol) {
			return &DepartmentLookup{
				Table:       table,
				KeyCol:      keyCol,
				NameCol:     nameCol,
				EmployeeCol: empDeptCol,
			}
		}
	}
	return nil
}

// HasEventColumns reports whether events can be joined to employees by card
// and ordered by time.
func (m SchemaMapping) HasEventColumns() bool {
	return m.EventTable != "" && m.EventCardCol != "" && m.EventTimeCol != ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
