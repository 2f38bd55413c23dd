package attendance

import (
	"fmt"
	"time"
)

// DefaultCutoff is how long past midnight a shift may still close.
const DefaultCutoff = 6 * time.Hour

const oneDay = 24 * time.Hour

// Engine reconciles punches into attendance. The zero value uses
// DefaultCutoff.
type Engine struct {
	Cutoff time.Duration
}

func NewEngine(cutoff time.Duration) Engine {
	return Engine{Cutoff: cutoff}
}

func (en Engine) cutoff() time.Duration {
	if en.Cutoff <= 0 {
		return DefaultCutoff
	}
	return en.Cutoff
}

// ShiftCutoff is the configured cutoff, or DefaultCutoff when unset.
func (en Engine) ShiftCutoff() time.Duration { return en.cutoff() }

// overnightEnd is the exclusive end of the window that may still close
// shifts started on the day beginning at dayStart.
func (en Engine) overnightEnd(dayStart time.Time) time.Time {
	return dayStart.Add(oneDay + en.cutoff())
}

func fmtTS(t time.Time) string { return t.Format(TimestampLayout) }

// ReconcileDay builds the full detail of one selected day from the events
// of a window around it. window need not be sorted.
func (en Engine) ReconcileDay(dayStart time.Time, window []RawEvent, swap bool) DayDetail {
	dayStart = startOfDay(dayStart)
	dayEnd := dayStart.Add(oneDay)
	detail := DayDetail{Date: dayKey(dayStart)}

	seq := Normalize(filterRange(window, dayStart, en.overnightEnd(dayStart)), swap)
	if len(seq) == 0 {
		return detail
	}

	inDay := func(t time.Time) bool { return !t.Before(dayStart) && t.Before(dayEnd) }

	firstIdx := -1
	var outsOnDay []time.Time
	for i, e := range seq {
		if !inDay(e.Time) {
			continue
		}
		if e.State == In && firstIdx < 0 {
			firstIdx = i
		}
		if e.State == Out {
			outsOnDay = append(outsOnDay, e.Time)
		}
	}

	if firstIdx < 0 {
		if len(outsOnDay) > 0 {
			last := outsOnDay[len(outsOnDay)-1]
			detail.LastOut = &last
			detail.MissingPunch = true
			detail.Notes = append(detail.Notes, "No IN punch found on selected date; OUT-only transactions were ignored.")
		}
		return detail
	}

	firstIn := seq[firstIdx].Time
	lastIdx := -1
	for i := len(seq) - 1; i >= firstIdx; i-- {
		if seq[i].State == Out && !seq[i].Time.Before(firstIn) {
			lastIdx = i
			break
		}
	}
	endIdx := len(seq) - 1
	if lastIdx >= 0 {
		endIdx = lastIdx
	}

	var openIn, breakFrom *time.Time
	for _, e := range seq[firstIdx : endIdx+1] {
		t := e.Time
		detail.Transactions = append(detail.Transactions, Transaction{State: e.State, Time: t, Inferred: e.Inferred})

		if e.State == In {
			if openIn != nil {
				detail.Notes = append(detail.Notes,
					fmt.Sprintf("Ignored consecutive IN at %s while previous IN remained open.", fmtTS(t)))
				continue
			}
			if breakFrom != nil && t.After(*breakFrom) {
				detail.TotalOutMinutes += floorMinutes(t.Sub(*breakFrom))
				breakFrom = nil
			}
			openIn = &t
			continue
		}

		if openIn == nil {
			detail.Notes = append(detail.Notes,
				fmt.Sprintf("Ignored OUT at %s without a matching prior IN.", fmtTS(t)))
			breakFrom = &t
			continue
		}

		if !t.Before(*openIn) {
			mins := floorMinutes(t.Sub(*openIn))
			detail.TotalInMinutes += mins
			detail.Intervals = append(detail.Intervals, Interval{
				Date:    dayKey(*openIn),
				In:      *openIn,
				Out:     t,
				Minutes: mins,
			})
		} else {
			detail.Notes = append(detail.Notes,
				fmt.Sprintf("Skipped negative IN interval from %s to %s.", fmtTS(*openIn), fmtTS(t)))
		}
		openIn = nil
		breakFrom = &t
	}

	// An IN after the last OUT can no longer close. Only the selected day's
	// INs count; the next day's shift starts inside the overnight window.
	if openIn == nil {
		for _, e := range seq[endIdx+1:] {
			if e.State == In && inDay(e.Time) {
				t := e.Time
				openIn = &t
				break
			}
		}
	}
	if openIn != nil {
		detail.MissingOut = true
		detail.Notes = append(detail.Notes,
			fmt.Sprintf("Missing OUT after last IN at %s; open interval excluded from totals.", fmtTS(*openIn)))
	}

	detail.FirstIn = &firstIn
	if lastIdx >= 0 {
		lastOut := seq[lastIdx].Time
		detail.LastOut = &lastOut
	}
	detail.DurationMinutes = durationMinutes(detail.FirstIn, detail.LastOut)
	if detail.DurationMinutes == nil && detail.LastOut == nil {
		detail.Notes = append(detail.Notes, "Missing OUT punch in selected work window.")
	}
	detail.MissingPunch = (detail.FirstIn == nil) != (detail.LastOut == nil)
	return detail
}

// ComputeDay summarizes one day of a period from dayEvents, which must
// cover [dayStart, dayStart+24h+cutoff). Unknown flags are ignored here.
func (en Engine) ComputeDay(dayStart time.Time, dayEvents []RawEvent, swap bool) DayRecord {
	dayStart = startOfDay(dayStart)
	dayEnd := dayStart.Add(oneDay)
	overnightEnd := en.overnightEnd(dayStart)
	rec := DayRecord{Date: dayKey(dayStart)}

	var firstIn, lastOutOnDay *time.Time
	for _, e := range dayEvents {
		if e.Time.Before(dayStart) || !e.Time.Before(dayEnd) {
			continue
		}
		t := e.Time
		switch {
		case isIn(e, swap):
			rec.HasRelevantEvents = true
			if firstIn == nil || t.Before(*firstIn) {
				firstIn = &t
			}
		case isOut(e, swap):
			rec.HasRelevantEvents = true
			if lastOutOnDay == nil || t.After(*lastOutOnDay) {
				lastOutOnDay = &t
			}
		}
	}

	var lastOut *time.Time
	if firstIn != nil {
		// Only OUTs at or after first_in qualify, so the pair is never
		// reversed here.
		for _, e := range dayEvents {
			t := e.Time
			if t.Before(*firstIn) || !t.Before(overnightEnd) || !isOut(e, swap) {
				continue
			}
			if lastOut == nil || t.After(*lastOut) {
				lastOut = &t
			}
		}
	} else {
		lastOut = lastOutOnDay
	}

	rec.FirstIn = firstIn
	rec.DurationMinutes = durationMinutes(firstIn, lastOut)
	if firstIn != nil && lastOut != nil && rec.DurationMinutes == nil {
		lastOut = nil
	}
	rec.LastOut = lastOut
	rec.MissingPunch = (rec.FirstIn == nil) != (rec.LastOut == nil)
	return rec
}

// CountSessions counts completed IN->OUT pairs overlapping
// (windowStart, windowEnd). Unknown flags are inferred as in Normalize.
func CountSessions(events []RawEvent, windowStart, windowEnd time.Time, swap bool) int {
	sessions := 0
	var openIn *time.Time
	for _, e := range Normalize(events, swap) {
		t := e.Time
		if !t.Before(windowEnd) {
			break
		}
		if e.State == In {
			if openIn == nil {
				openIn = &t
			}
			continue
		}
		if openIn == nil {
			continue
		}
		if !t.Before(*openIn) && t.After(windowStart) && openIn.Before(windowEnd) {
			sessions++
		}
		openIn = nil
	}
	return sessions
}
