package attendance

import "time"

// AccumulateSegments integrates time spent IN and OUT over [start, end).
// Each state change closes a segment; the segment is clipped to the window
// and split at midnight. The segment still open after the last change is
// not counted. Prepend the last event before start to count the state
// already in progress at start.
func AccumulateSegments(events []RawEvent, start, end time.Time, swap bool) PeriodTotals {
	totals := PeriodTotals{PerDay: map[string]DayTotals{}}
	if !end.After(start) || len(events) == 0 {
		return totals
	}

	var (
		state    *State
		segStart time.Time
	)
	for _, e := range sortedCopy(events) {
		next := effectiveState(e, swap)
		if next == nil {
			continue
		}
		if state == nil {
			state, segStart = next, e.Time
			continue
		}
		if *next == *state {
			continue
		}
		addSegment(&totals, *state, segStart, e.Time, start, end)
		state, segStart = next, e.Time
	}
	return totals
}

func addSegment(totals *PeriodTotals, s State, from, to, start, end time.Time) {
	if from.Before(start) {
		from = start
	}
	if to.After(end) {
		to = end
	}
	for cursor := from; cursor.Before(to); {
		chunkEnd := startOfDay(cursor).AddDate(0, 0, 1)
		if chunkEnd.After(to) {
			chunkEnd = to
		}
		if mins := floorMinutes(chunkEnd.Sub(cursor)); mins > 0 {
			key := dayKey(cursor)
			bucket := totals.PerDay[key]
			if s == In {
				bucket.InMinutes += mins
				totals.TotalInMinutes += mins
			} else {
				bucket.OutMinutes += mins
				totals.TotalOutMinutes += mins
			}
			totals.PerDay[key] = bucket
		}
		cursor = chunkEnd
	}
}
