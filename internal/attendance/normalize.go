package attendance

import (
	"slices"
	"time"
)

// effectiveState is the decoded flag with the swap applied, or nil.
func effectiveState(e RawEvent, swap bool) *State {
	if e.Flag == nil {
		return nil
	}
	s := *e.Flag
	if swap {
		s = s.Invert()
	}
	return &s
}

func isIn(e RawEvent, swap bool) bool {
	s := effectiveState(e, swap)
	return s != nil && *s == In
}

func isOut(e RawEvent, swap bool) bool {
	s := effectiveState(e, swap)
	return s != nil && *s == Out
}

// sortedCopy returns events ordered by time; ties keep input order.
func sortedCopy(events []RawEvent) []RawEvent {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b RawEvent) int { return a.Time.Compare(b.Time) })
	return out
}

// Normalize turns events into a strict IN/OUT sequence. Unknown flags are
// inferred by alternation from the previous state, starting with IN.
func Normalize(events []RawEvent, swap bool) []NormalizedEvent {
	sorted := sortedCopy(events)
	out := make([]NormalizedEvent, 0, len(sorted))

	var prev *State
	for _, e := range sorted {
		ne := NormalizedEvent{Time: e.Time}
		if s := effectiveState(e, swap); s != nil {
			ne.State = *s
		} else {
			ne.Inferred = true
			ne.State = In
			if prev != nil {
				ne.State = prev.Invert()
			}
		}
		out = append(out, ne)
		prev = &ne.State
	}
	return out
}

// filterRange keeps events with from <= t < to.
func filterRange(events []RawEvent, from, to time.Time) []RawEvent {
	var out []RawEvent
	for _, e := range events {
		if !e.Time.Before(from) && e.Time.Before(to) {
			out = append(out, e)
		}
	}
	return out
}
