package vendorsql

import (
	"fmt"
	"strings"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
)

// Table aliases used by every generated statement.
const (
	aliasEmployee   = "emp"
	aliasEvent      = "e"
	aliasEventType  = "et"
	aliasDepartment = "dept"
)

// builder renders SQL fragments for one resolved schema.
type builder struct {
	m attendance.SchemaMapping
	d Dialect

	args []any
}

func newBuilder(m attendance.SchemaMapping, d Dialect) *builder {
	return &builder{m: m, d: d}
}

// bind appends v and returns its placeholder.
func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

func col(alias, name string) string { return alias + "." + Quote(name) }

func castText(expr string) string { return "CAST(" + expr + " AS TEXT)" }

// cleanText renders a trimmed, never-NULL text expression; '' for a
// missing column.
func cleanText(alias, name string) string {
	if name == "" {
		return "''"
	}
	return "TRIM(COALESCE(" + castText(col(alias, name)) + ", ''))"
}

func (b *builder) cardText() string { return cleanText(aliasEmployee, b.m.CardCol) }

// activeWhere is the active-employee filter. Status clauses are emitted
// only for columns the schema actually has.
func (b *builder) activeWhere() string {
	var clauses []string
	if c := b.m.EmpEnableCol; c != "" {
		clauses = append(clauses, col(aliasEmployee, c)+" = 1")
	}
	for _, c := range []string{b.m.DeletedCol, b.m.LeaveCol, b.m.VisitorCol} {
		if c == "" {
			continue
		}
		ref := col(aliasEmployee, c)
		clauses = append(clauses, fmt.Sprintf("(%s = 0 OR %s IS NULL)", ref, ref))
	}
	card := col(aliasEmployee, b.m.CardCol)
	clauses = append(clauses, fmt.Sprintf("%s IS NOT NULL AND %s NOT IN ('', '0')", card, b.cardText()))
	return strings.Join(clauses, "\n  AND ")
}

// departmentParts returns the department select expression and the
// optional lookup join.
func (b *builder) departmentParts() (expr, join string) {
	if b.m.DepartmentCol == "" {
		return "''", ""
	}
	if lk := b.m.DepartmentLookup; lk != nil && lk.Table != "" && lk.KeyCol != "" && lk.NameCol != "" {
		empCol := lk.EmployeeCol
		if empCol == "" {
			empCol = b.m.DepartmentCol
		}
		join = fmt.Sprintf("LEFT JOIN %s %s ON %s = %s",
			Quote(lk.Table), aliasDepartment, col(aliasEmployee, empCol), col(aliasDepartment, lk.KeyCol))
		return cleanText(aliasDepartment, lk.NameCol), join
	}
	return cleanText(aliasEmployee, b.m.DepartmentCol), ""
}

// employeeSelect is the SELECT ... WHERE prefix shared by the directory
// queries. Callers append extra predicates, ORDER BY and LIMIT.
func (b *builder) employeeSelect() string {
	deptExpr, deptJoin := b.departmentParts()
	return fmt.Sprintf(`SELECT
  %s AS employee_id,
  %s AS card_no,
  %s AS employee_name,
  %s AS department
FROM %s %s
%s
WHERE %s`,
		cleanText(aliasEmployee, b.m.EmployeeIDCol),
		b.cardText(),
		cleanText(aliasEmployee, b.m.NameCol),
		deptExpr,
		Quote(b.m.EmployeeTable), aliasEmployee,
		deptJoin,
		b.activeWhere(),
	)
}

func (b *builder) searchPredicate(search string) string {
	pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
	exprs := []string{
		cleanText(aliasEmployee, b.m.NameCol),
		b.cardText(),
		cleanText(aliasEmployee, b.m.EmployeeIDCol),
	}
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if e == "''" {
			continue
		}
		parts = append(parts, fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, e, b.bind(pattern)))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// flagColumns renders the raw flag and fallback text expressions of plan.
func flagColumns(plan attendance.VariantPlan) (flag, fallback string) {
	flag, fallback = "CAST(NULL AS TEXT)", "CAST(NULL AS TEXT)"
	switch plan.FlagSource {
	case attendance.FlagFromEvent:
		flag = castText(col(aliasEvent, plan.FlagCol))
	case attendance.FlagFromEventType:
		flag = castText(col(aliasEventType, plan.FlagCol))
	}
	if plan.FallbackCol != "" {
		fallback = castText(col(aliasEventType, plan.FallbackCol))
	}
	return flag, fallback
}

// eventFrom renders the FROM clause of the event table, joined to the
// event-type table for join variants and, when withEmployee is set, to
// the employee table by card number.
func (b *builder) eventFrom(plan attendance.VariantPlan, withEmployee bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FROM %s %s", Quote(b.m.EventTable), aliasEvent)
	if plan.Joined() {
		fmt.Fprintf(&sb, "\nLEFT JOIN %s %s ON %s = %s",
			Quote(b.m.EventTypeTable), aliasEventType,
			col(aliasEvent, plan.JoinEventCol), col(aliasEventType, plan.JoinTypeCol))
	}
	if withEmployee {
		fmt.Fprintf(&sb, "\nINNER JOIN %s %s ON %s = %s",
			Quote(b.m.EmployeeTable), aliasEmployee,
			cleanText(aliasEvent, b.m.EventCardCol), b.cardText())
	}
	return sb.String()
}

func (b *builder) eventTime() string { return col(aliasEvent, b.m.EventTimeCol) }
