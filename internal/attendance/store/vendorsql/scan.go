package vendorsql

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02",
}

// parseDBTime decodes an event time as returned by either driver. Vendor
// times are naive: the wall clock is kept and the zone is dropped.
func parseDBTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return naive(t), true
	case string:
		return parseTimeText(t)
	case []byte:
		return parseTimeText(string(t))
	}
	return time.Time{}, false
}

func parseTimeText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return naive(t), true
		}
	}
	return time.Time{}, false
}

func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// cleanValue trims and NFC-normalises a vendor text value.
func cleanValue(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return norm.NFC.String(strings.TrimSpace(ns.String))
}

// normalizeEmployeeID renders numeric ids canonically ("0042" -> "42") and
// keeps anything else as text.
func normalizeEmployeeID(s string) string {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return s
}
