package vendorsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	"github.com/BrandonDHaskell/timekeep/internal/logging"
)

// SchemaProvider yields the resolved vendor schema.
// *attendance.SchemaResolver satisfies it.
type SchemaProvider interface {
	Get(ctx context.Context) (attendance.SchemaMapping, error)
}

// Store implements store.EventSource and store.EmployeeDirectory against
// the vendor database.
type Store struct {
	conn   *Conn
	schema SchemaProvider

	sampleOnce sync.Once
}

func NewStore(conn *Conn, schema SchemaProvider) *Store {
	return &Store{conn: conn, schema: schema}
}

func (s *Store) builder(ctx context.Context) (*builder, error) {
	m, err := s.schema.Get(ctx)
	if err != nil {
		return nil, err
	}
	return newBuilder(m, s.conn.dialect), nil
}

// eventsEnabled reports whether event queries can run for plan.
func eventsEnabled(b *builder, plan attendance.VariantPlan) bool {
	return plan.Supported() && b.m.HasEventColumns()
}

type eventRow struct {
	card string
	ev   attendance.RawEvent
}

// queryEvents runs an event query selecting card_no, event_time, flag and
// fallback, decoding each row with plan. Rows with an unreadable time are
// dropped.
func queryEvents(ctx context.Context, db *sql.DB, query string, args []any, plan attendance.VariantPlan) ([]eventRow, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []eventRow
	for rows.Next() {
		var (
			card           sql.NullString
			at             any
			flag, fallback sql.NullString
		)
		if err := rows.Scan(&card, &at, &flag, &fallback); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		t, ok := parseDBTime(at)
		if !ok {
			continue
		}
		out = append(out, eventRow{
			card: strings.TrimSpace(card.String),
			ev: attendance.RawEvent{
				Time: t,
				Flag: plan.Decode(attendance.RawFlag{Value: nullable(flag), Fallback: nullable(fallback)}),
			},
		})
	}
	return out, rows.Err()
}

func rawEvents(rows []eventRow) []attendance.RawEvent {
	out := make([]attendance.RawEvent, len(rows))
	for i, r := range rows {
		out[i] = r.ev
	}
	return out
}

// ── EventSource ────────────────────────────────────────────────────────────

// RecentEvents samples the newest events across all cards, newest first,
// without the active-employee filter.
func (s *Store) RecentEvents(ctx context.Context, plan attendance.VariantPlan, limit int) ([]attendance.RawEvent, error) {
	b, err := s.builder(ctx)
	if err != nil {
		return nil, err
	}
	if !plan.Supported() || b.m.EventTable == "" || b.m.EventTimeCol == "" {
		return nil, nil
	}

	flag, fallback := flagColumns(plan)
	query := fmt.Sprintf(`SELECT '' AS card_no, %s AS event_time, %s AS flag, %s AS fallback
%s
WHERE %s IS NOT NULL
ORDER BY %s DESC
LIMIT %d`,
		b.eventTime(), flag, fallback, b.eventFrom(plan, false), b.eventTime(), b.eventTime(), max(limit, 1))

	rows, err := run(ctx, s.conn, "recent_events", func(ctx context.Context, db *sql.DB) ([]eventRow, error) {
		return queryEvents(ctx, db, query, b.args, plan)
	})
	if err != nil {
		return nil, err
	}
	return rawEvents(rows), nil
}

func (s *Store) EventsForCard(ctx context.Context, plan attendance.VariantPlan, cardNo string, from, to time.Time) ([]attendance.RawEvent, error) {
	b, err := s.builder(ctx)
	if err != nil {
		return nil, err
	}
	if !eventsEnabled(b, plan) {
		return nil, nil
	}

	flag, fallback := flagColumns(plan)
	query := fmt.Sprintf(`SELECT %s AS card_no, %s AS event_time, %s AS flag, %s AS fallback
%s
WHERE %s
  AND %s = %s
  AND %s >= %s
  AND %s < %s
ORDER BY %s ASC`,
		b.cardText(), b.eventTime(), flag, fallback,
		b.eventFrom(plan, true),
		b.activeWhere(),
		b.cardText(), b.bind(strings.TrimSpace(cardNo)),
		b.eventTime(), b.bind(s.conn.dialect.TimeArg(from)),
		b.eventTime(), b.bind(s.conn.dialect.TimeArg(to)),
		b.eventTime())

	rows, err := run(ctx, s.conn, "events_for_card", func(ctx context.Context, db *sql.DB) ([]eventRow, error) {
		return queryEvents(ctx, db, query, b.args, plan)
	})
	if err != nil {
		return nil, err
	}
	return rawEvents(rows), nil
}

func (s *Store) LastEventBefore(ctx context.Context, plan attendance.VariantPlan, cardNo string, t time.Time) (*attendance.RawEvent, error) {
	b, err := s.builder(ctx)
	if err != nil {
		return nil, err
	}
	if !eventsEnabled(b, plan) {
		return nil, nil
	}

	flag, fallback := flagColumns(plan)
	query := fmt.Sprintf(`SELECT %s AS card_no, %s AS event_time, %s AS flag, %s AS fallback
%s
WHERE %s
  AND %s = %s
  AND %s < %s
ORDER BY %s DESC
LIMIT 1`,
		b.cardText(), b.eventTime(), flag, fallback,
		b.eventFrom(plan, true),
		b.activeWhere(),
		b.cardText(), b.bind(strings.TrimSpace(cardNo)),
		b.eventTime(), b.bind(s.conn.dialect.TimeArg(t)),
		b.eventTime())

	rows, err := run(ctx, s.conn, "last_event_before", func(ctx context.Context, db *sql.DB) ([]eventRow, error) {
		return queryEvents(ctx, db, query, b.args, plan)
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	ev := rows[0].ev
	return &ev, nil
}

func (s *Store) EventsForActive(ctx context.Context, plan attendance.VariantPlan, from, to time.Time) (map[string][]attendance.RawEvent, error) {
	b, err := s.builder(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]attendance.RawEvent)
	if !eventsEnabled(b, plan) {
		return out, nil
	}

	flag, fallback := flagColumns(plan)
	query := fmt.Sprintf(`SELECT %s AS card_no, %s AS event_time, %s AS flag, %s AS fallback
%s
WHERE %s
  AND %s >= %s
  AND %s < %s
ORDER BY card_no ASC, %s ASC`,
		b.cardText(), b.eventTime(), flag, fallback,
		b.eventFrom(plan, true),
		b.activeWhere(),
		b.eventTime(), b.bind(s.conn.dialect.TimeArg(from)),
		b.eventTime(), b.bind(s.conn.dialect.TimeArg(to)),
		b.eventTime())

	rows, err := run(ctx, s.conn, "events_for_active", func(ctx context.Context, db *sql.DB) ([]eventRow, error) {
		return queryEvents(ctx, db, query, b.args, plan)
	})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.card == "" {
			continue
		}
		out[r.card] = append(out[r.card], r.ev)
	}
	return out, nil
}

// LatestForActive picks each active employee's newest event with a window
// function, supported by SQLite 3.25+ and PostgreSQL.
func (s *Store) LatestForActive(ctx context.Context, plan attendance.VariantPlan) (map[string]attendance.RawEvent, error) {
	b, err := s.builder(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]attendance.RawEvent)
	if !eventsEnabled(b, plan) {
		return out, nil
	}

	flag, fallback := flagColumns(plan)
	query := fmt.Sprintf(`SELECT card_no, event_time, flag, fallback FROM (
  SELECT %s AS card_no, %s AS event_time, %s AS flag, %s AS fallback,
    ROW_NUMBER() OVER (PARTITION BY %s ORDER BY %s DESC) AS rn
  %s
  WHERE %s
) latest
WHERE rn = 1`,
		b.cardText(), b.eventTime(), flag, fallback,
		b.cardText(), b.eventTime(),
		b.eventFrom(plan, true),
		b.activeWhere())

	rows, err := run(ctx, s.conn, "latest_for_active", func(ctx context.Context, db *sql.DB) ([]eventRow, error) {
		return queryEvents(ctx, db, query, b.args, plan)
	})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.card != "" {
			out[r.card] = r.ev
		}
	}
	return out, nil
}

// ── EmployeeDirectory ──────────────────────────────────────────────────────

func scanEmployees(rows *sql.Rows) ([]attendance.Employee, error) {
	var out []attendance.Employee
	for rows.Next() {
		var id, card, name, dept sql.NullString
		if err := rows.Scan(&id, &card, &name, &dept); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		cardNo := cleanValue(card)
		if cardNo == "" {
			continue
		}
		out = append(out, attendance.Employee{
			EmployeeID: normalizeEmployeeID(cleanValue(id)),
			CardNo:     cardNo,
			Name:       cleanValue(name),
			Department: cleanValue(dept),
		})
	}
	return out, rows.Err()
}

func (s *Store) queryEmployees(ctx context.Context, op, query string, args []any) ([]attendance.Employee, error) {
	return run(ctx, s.conn, op, func(ctx context.Context, db *sql.DB) ([]attendance.Employee, error) {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanEmployees(rows)
	})
}

func (s *Store) Identity(ctx context.Context, cardNo string) (attendance.Employee, bool, error) {
	b, err := s.builder(ctx)
	if err != nil {
		return attendance.Employee{}, false, err
	}
	query := fmt.Sprintf("%s\n  AND %s = %s\nORDER BY employee_name, card_no\nLIMIT 1",
		b.employeeSelect(), b.cardText(), b.bind(strings.TrimSpace(cardNo)))

	emps, err := s.queryEmployees(ctx, "employee_identity", query, b.args)
	if err != nil || len(emps) == 0 {
		return attendance.Employee{}, false, err
	}
	return emps[0], true, nil
}

func (s *Store) ActiveEmployees(ctx context.Context) ([]attendance.Employee, error) {
	b, err := s.builder(ctx)
	if err != nil {
		return nil, err
	}
	query := b.employeeSelect() + "\nORDER BY employee_name, card_no"
	return s.queryEmployees(ctx, "active_employees", query, b.args)
}

func (s *Store) SearchEmployees(ctx context.Context, search string, limit int) ([]attendance.Employee, error) {
	b, err := s.builder(ctx)
	if err != nil {
		return nil, err
	}
	query := b.employeeSelect()
	if search = strings.TrimSpace(search); search != "" {
		query += "\n  AND " + b.searchPredicate(search)
	}
	query += "\nORDER BY employee_name, card_no"
	if limit > 0 {
		query += fmt.Sprintf("\nLIMIT %d", limit)
	}

	emps, err := s.queryEmployees(ctx, "search_employees", query, b.args)
	if err != nil {
		return nil, err
	}
	s.logEmployeeSample(b.m, emps)
	return emps, nil
}

func (s *Store) CountActive(ctx context.Context) (int, error) {
	b, err := s.builder(ctx)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("SELECT COUNT(1) FROM %s %s\nWHERE %s",
		Quote(b.m.EmployeeTable), aliasEmployee, b.activeWhere())

	return run(ctx, s.conn, "count_active", func(ctx context.Context, db *sql.DB) (int, error) {
		var n int
		err := db.QueryRowContext(ctx, query, b.args...).Scan(&n)
		return n, err
	})
}

// logEmployeeSample logs the resolved fields of one employee, once per process.
func (s *Store) logEmployeeSample(m attendance.SchemaMapping, emps []attendance.Employee) {
	if len(emps) == 0 {
		return
	}
	s.sampleOnce.Do(func() {
		e := emps[0]
		logging.Info().
			Str("component", "vendorsql").
			Str("card_no", orDash(e.CardNo)).
			Str("employee_id", orDash(e.EmployeeID)).
			Str("department", orDash(e.Department)).
			Str("source", orDash(m.EmployeeIDSource)).
			Msg("employee sample fields resolved")
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var (
	_ store.EventSource       = (*Store)(nil)
	_ store.EmployeeDirectory = (*Store)(nil)
)
