package attendance

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDate    = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidMonth   = errors.New("month must be in YYYY-MM format")
	ErrInvalidYear    = errors.New("year must be numeric YYYY")
	ErrYearOutOfRange = errors.New("year is out of accepted range")
)

const (
	minYear = 1900
	maxYear = 2100
)

// ParseDate parses a YYYY-MM-DD value into UTC midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseMonth parses YYYY-MM and returns [start, end) plus the normalized label.
func ParseMonth(value string) (time.Time, time.Time, string, error) {
	start, err := time.ParseInLocation(MonthLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, "", ErrInvalidMonth
	}
	return start, start.AddDate(0, 1, 0), start.Format(MonthLayout), nil
}

// ParseYear parses a numeric year in [1900, 2100] and returns [start, end).
func ParseYear(value string) (time.Time, time.Time, string, error) {
	y, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, time.Time{}, "", ErrInvalidYear
	}
	if y < minYear || y > maxYear {
		return time.Time{}, time.Time{}, "", ErrYearOutOfRange
	}
	start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0), strconv.Itoa(y), nil
}

// IsValidationError reports whether err is one of the input parsing errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidYear) ||
		errors.Is(err, ErrYearOutOfRange)
}
