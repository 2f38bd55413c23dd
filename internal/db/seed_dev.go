package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const vendorTimeLayout = "2006-01-02 15:04:05"

type SeedVendorOptions struct {
	// Days of demo punches to generate, ending yesterday. Defaults to 3.
	Days int
	// Now anchors the generated dates. Defaults to time.Now().UTC().
	Now time.Time
}

// SeedDevVendor creates a small vendor schema (TEmployee, TDepartment,
// TEvent, TEventType) in a SQLite vendor database and fills it with demo
// punches. It does nothing when TEmployee already has rows.
func SeedDevVendor(ctx context.Context, db *sql.DB, opt SeedVendorOptions) error {
	if opt.Days <= 0 {
		opt.Days = 3
	}
	if opt.Now.IsZero() {
		opt.Now = time.Now().UTC()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed vendor begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS TDepartment (
  DepartmentID   INTEGER PRIMARY KEY,
  DepartmentName VARCHAR(100) NOT NULL
);
CREATE TABLE IF NOT EXISTS TEmployee (
  EmpID        INTEGER PRIMARY KEY,
  EmployeeCode VARCHAR(32),
  EmployeeName VARCHAR(100),
  CardNo       VARCHAR(32),
  DepartmentID INTEGER,
  EmpEnable    INTEGER NOT NULL DEFAULT 1,
  Deleted      INTEGER,
  Leave        INTEGER,
  isVisitor    INTEGER
);
CREATE TABLE IF NOT EXISTS TEventType (
  EventID INTEGER PRIMARY KEY,
  Event   VARCHAR(64),
  InOut   INTEGER
);
CREATE TABLE IF NOT EXISTS TEvent (
  ID        INTEGER PRIMARY KEY AUTOINCREMENT,
  EmpID     INTEGER,
  CardNo    VARCHAR(32),
  EventTime DATETIME NOT NULL,
  EventType INTEGER
);
CREATE INDEX IF NOT EXISTS idx_tevent_card_time ON TEvent(CardNo, EventTime);
`); err != nil {
		return fmt.Errorf("seed vendor schema: %w", err)
	}

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM TEmployee;`).Scan(&n); err != nil {
		return fmt.Errorf("seed vendor count: %w", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO TDepartment(DepartmentID, DepartmentName) VALUES
  (1, 'Operations'),
  (2, 'Warehouse');
INSERT INTO TEventType(EventID, Event, InOut) VALUES
  (1, 'Entry Granted', 1),
  (2, 'Exit Granted', 0),
  (3, 'Door Held Open', NULL);
INSERT INTO TEmployee(EmpID, EmployeeCode, EmployeeName, CardNo, DepartmentID, EmpEnable, Deleted, Leave, isVisitor) VALUES
  (1, 'E-1001', 'Alice Moreau', '1001', 1, 1, 0, 0, 0),
  (2, 'E-1002', 'Bora Kim',     '1002', 2, 1, NULL, NULL, NULL),
  (3, 'E-1003', 'Chen Wei',     '1003', 2, 1, 0, 0, 0),
  (4, 'E-1004', 'Dana Old',     '1004', 1, 0, 0, 0, 0),
  (5, 'V-0001', 'Visitor',      '9001', NULL, 1, 0, 0, 1);
`); err != nil {
		return fmt.Errorf("seed vendor rows: %w", err)
	}

	type punch struct {
		empID   int
		card    string
		offset  time.Duration // from day start
		evtType int
	}
	daily := []punch{
		// Day shift with a lunch break.
		{1, "1001", 8 * time.Hour, 1},
		{1, "1001", 12 * time.Hour, 2},
		{1, "1001", 13 * time.Hour, 1},
		{1, "1001", 17*time.Hour + 30*time.Minute, 2},
		// Forgot to badge out.
		{2, "1002", 9 * time.Hour, 1},
		{2, "1002", 9*time.Hour + 5*time.Minute, 3},
		// Night shift ending next morning.
		{3, "1003", 22 * time.Hour, 1},
		{3, "1003", 29*time.Hour + 30*time.Minute, 2},
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO TEvent(EmpID, CardNo, EventTime, EventType) VALUES (?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("seed vendor prepare: %w", err)
	}
	defer stmt.Close()

	today := time.Date(opt.Now.Year(), opt.Now.Month(), opt.Now.Day(), 0, 0, 0, 0, time.UTC)
	for d := opt.Days; d >= 1; d-- {
		day := today.AddDate(0, 0, -d)
		for _, p := range daily {
			at := day.Add(p.offset).Format(vendorTimeLayout)
			if _, err := stmt.ExecContext(ctx, p.empID, p.card, at, p.evtType); err != nil {
				return fmt.Errorf("seed vendor event: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed vendor commit: %w", err)
	}
	return nil
}
