package attendance

import (
	"fmt"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	MonthLayout     = "2006-01"
	TimestampLayout = "2006-01-02 15:04:05"
	TimeLayout      = "15:04:05"
	Time12hLayout   = "03:04:05 PM"
)

// FormatTimestamp renders t as YYYY-MM-DD HH:MM:SS, nil for nil.
func FormatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(TimestampLayout)
	return &s
}

// FormatClock renders the HH:MM:SS part of t.
func FormatClock(t time.Time) string { return t.Format(TimeLayout) }

// Format12h renders the 12-hour display form of t.
func Format12h(t time.Time) string { return t.Format(Time12hLayout) }

// MinutesToHHMM renders minutes as zero-padded HH:MM. Negative or nil
// values render as nil.
func MinutesToHHMM(minutes *int) *string {
	if minutes == nil || *minutes < 0 {
		return nil
	}
	s := fmt.Sprintf("%02d:%02d", *minutes/60, *minutes%60)
	return &s
}

// HHMM is MinutesToHHMM for a plain int.
func HHMM(minutes int) *string { return MinutesToHHMM(&minutes) }

// ReadableDuration renders minutes as "H Hrs MM Mins", or "MM Mins" under an hour.
func ReadableDuration(minutes *int) *string {
	if minutes == nil {
		return nil
	}
	hrs, mins := *minutes/60, *minutes%60
	var s string
	if hrs <= 0 {
		s = fmt.Sprintf("%02d Mins", mins)
	} else {
		s = fmt.Sprintf("%d Hrs %02d Mins", hrs, mins)
	}
	return &s
}

// Readable is ReadableDuration for a plain int.
func Readable(minutes int) *string { return ReadableDuration(&minutes) }

// durationMinutes returns the floor minutes between two instants, or nil
// when either is missing or the delta is negative.
func durationMinutes(from, to *time.Time) *int {
	if from == nil || to == nil || to.Before(*from) {
		return nil
	}
	m := floorMinutes(to.Sub(*from))
	return &m
}

func floorMinutes(d time.Duration) int {
	return int(d / time.Minute)
}

func dayKey(t time.Time) string { return t.Format(DateLayout) }

// startOfDay truncates t to local midnight in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
