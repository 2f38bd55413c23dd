// Package vendorsql reads employees and punches from the vendor attendance
// database over database/sql. SQLite (modernc) and PostgreSQL (pgx) vendors
// share the same queries; the Dialect covers the differences.
package vendorsql

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect holds the per-driver parts of the generated SQL.
type Dialect struct {
	Name string

	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string

	// TimeArg converts a naive UTC time into a bind value comparable with
	// the vendor's stored event times.
	TimeArg func(t time.Time) any

	tablesSQL  string
	columnsSQL string
}

const vendorTimeLayout = "2006-01-02 15:04:05"

// SQLite stores event times as "YYYY-MM-DD HH:MM:SS" text, so bound times
// use the same layout and compare lexicographically.
func SQLite() Dialect {
	return Dialect{
		Name:        "sqlite",
		Placeholder: func(int) string { return "?" },
		TimeArg:     func(t time.Time) any { return t.UTC().Format(vendorTimeLayout) },
		tablesSQL: `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`,
		columnsSQL: `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`,
	}
}

// Postgres binds times as timestamp-without-zone values.
func Postgres() Dialect {
	return Dialect{
		Name:        "pgx",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		TimeArg: func(t time.Time) any {
			u := t.UTC()
			return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), u.Minute(), u.Second(), u.Nanosecond(), time.UTC)
		},
		tablesSQL: `SELECT table_name FROM information_schema.tables
WHERE table_type = 'BASE TABLE' AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_name`,
		columnsSQL: `SELECT column_name, data_type FROM information_schema.columns
WHERE table_name = $1
ORDER BY ordinal_position`,
	}
}

// ForDriver returns the dialect for a database/sql driver name.
func ForDriver(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite":
		return SQLite(), nil
	case "pgx", "postgres", "postgresql":
		return Postgres(), nil
	}
	return Dialect{}, fmt.Errorf("no sql dialect for driver %q", driver)
}

// Quote renders an identifier with ANSI double quotes.
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
