package attendance_test

import (
	"testing"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
)

// ts parses "2006-01-02 15:04:05" in UTC.
func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation(attendance.TimestampLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", s, err)
	}
	return v
}

func in(t *testing.T, s string) attendance.RawEvent {
	return attendance.RawEvent{Time: ts(t, s), Flag: attendance.Flag(attendance.In)}
}

func out(t *testing.T, s string) attendance.RawEvent {
	return attendance.RawEvent{Time: ts(t, s), Flag: attendance.Flag(attendance.Out)}
}

func unknown(t *testing.T, s string) attendance.RawEvent {
	return attendance.RawEvent{Time: ts(t, s)}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := attendance.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func strp(s string) *string { return &s }
