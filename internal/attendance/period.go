package attendance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BuildDays produces one DayRecord per calendar day in [start, end) that
// has relevant events. events should cover [start, end+24h+cutoff).
//
// Two cursors slide forward over the sorted events so each day's slice is
// found without rescanning.
func (en Engine) BuildDays(events []RawEvent, start, end time.Time, swap bool) []DayRecord {
	sorted := sortedCopy(events)
	n := len(sorted)
	var records []DayRecord

	lo, hi := 0, 0
	for cursor := startOfDay(start); cursor.Before(end); cursor = cursor.AddDate(0, 0, 1) {
		overnightEnd := en.overnightEnd(cursor)
		for lo < n && sorted[lo].Time.Before(cursor) {
			lo++
		}
		if hi < lo {
			hi = lo
		}
		for hi < n && sorted[hi].Time.Before(overnightEnd) {
			hi++
		}

		rec := en.ComputeDay(cursor, sorted[lo:hi], swap)
		if rec.HasRelevantEvents {
			records = append(records, rec)
		}
	}
	return records
}

// MonthSummary folds the day records of one month.
type MonthSummary struct {
	WorkedDays       int // days with a first IN
	MissingPunchDays int
	TotalMinutes     int

	// AvgMinutesPerWorkedDay is 0 when there are no worked days.
	AvgMinutesPerWorkedDay int
	AvgHoursPerWorkedDay   decimal.Decimal
}

// FoldMonth sums day records.
func FoldMonth(records []DayRecord) MonthSummary {
	var s MonthSummary
	for _, r := range records {
		if r.FirstIn != nil {
			s.WorkedDays++
		}
		if r.MissingPunch {
			s.MissingPunchDays++
		}
		if r.DurationMinutes != nil {
			s.TotalMinutes += *r.DurationMinutes
		}
	}
	avg := averageMinutes(s.TotalMinutes, s.WorkedDays)
	s.AvgMinutesPerWorkedDay = int(avg.IntPart())
	s.AvgHoursPerWorkedDay = avg.Div(decimal.NewFromInt(60)).Round(2)
	return s
}

// MonthBucket is one month of a yearly fold.
type MonthBucket struct {
	Month            string
	WorkedDays       int
	DurationDays     int // days with a computed duration
	MissingPunchDays int
	TotalMinutes     int

	// AverageMinutesPerDay is total/duration days, nil without any.
	AverageMinutesPerDay *int
}

// YearSummary folds a year of day records by month.
type YearSummary struct {
	Months           []MonthBucket
	WorkedDays       int
	MissingPunchDays int
	TotalMinutes     int
}

// FoldYear groups records by month. Months without records are omitted.
func FoldYear(records []DayRecord) YearSummary {
	byMonth := map[string]*MonthBucket{}
	for _, r := range records {
		key := r.Date[:len(MonthLayout)]
		b := byMonth[key]
		if b == nil {
			b = &MonthBucket{Month: key}
			byMonth[key] = b
		}
		if r.FirstIn != nil {
			b.WorkedDays++
		}
		if r.MissingPunch {
			b.MissingPunchDays++
		}
		if r.DurationMinutes == nil {
			continue
		}
		b.DurationDays++
		b.TotalMinutes += *r.DurationMinutes
	}

	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var ys YearSummary
	for _, k := range keys {
		b := byMonth[k]
		if b.DurationDays > 0 {
			avg := int(averageMinutes(b.TotalMinutes, b.DurationDays).IntPart())
			b.AverageMinutesPerDay = &avg
		}
		ys.WorkedDays += b.WorkedDays
		ys.MissingPunchDays += b.MissingPunchDays
		ys.TotalMinutes += b.TotalMinutes
		ys.Months = append(ys.Months, *b)
	}
	return ys
}

// averageMinutes is total/count, zero when count is zero.
func averageMinutes(total, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(count)))
}

// AverageMinutes is the truncated average used by the all-employee rows.
func AverageMinutes(total, count int) int {
	return int(averageMinutes(total, count).IntPart())
}
