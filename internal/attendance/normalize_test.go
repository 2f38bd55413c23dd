package attendance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
)

func states(ns []attendance.NormalizedEvent) []attendance.State {
	out := make([]attendance.State, len(ns))
	for i, n := range ns {
		out[i] = n.State
	}
	return out
}

func TestNormalize_InfersByAlternation(t *testing.T) {
	events := []attendance.RawEvent{
		unknown(t, "2025-03-10 07:00:00"),
		unknown(t, "2025-03-10 08:00:00"),
		in(t, "2025-03-10 09:00:00"),
		unknown(t, "2025-03-10 10:00:00"),
		unknown(t, "2025-03-10 11:00:00"),
	}

	ns := attendance.Normalize(events, false)

	require.Len(t, ns, 5)
	assert.Equal(t, []attendance.State{
		attendance.In, attendance.Out, attendance.In, attendance.Out, attendance.In,
	}, states(ns))
	assert.True(t, ns[0].Inferred)
	assert.False(t, ns[2].Inferred)
	assert.True(t, ns[3].Inferred)
}

func TestNormalize_KnownFlagsKeptEvenWhenRepeated(t *testing.T) {
	events := []attendance.RawEvent{
		in(t, "2025-03-10 08:00:00"),
		in(t, "2025-03-10 08:01:00"),
		unknown(t, "2025-03-10 09:00:00"),
	}

	ns := attendance.Normalize(events, false)

	assert.Equal(t, []attendance.State{attendance.In, attendance.In, attendance.Out}, states(ns))
}

func TestNormalize_SwapAndStableSort(t *testing.T) {
	events := []attendance.RawEvent{
		in(t, "2025-03-10 10:00:00"),
		out(t, "2025-03-10 08:00:00"),
		in(t, "2025-03-10 08:00:00"),
	}

	ns := attendance.Normalize(events, true)

	require.Len(t, ns, 3)
	// Equal timestamps keep input order.
	assert.Equal(t, []attendance.State{attendance.In, attendance.Out, attendance.Out}, states(ns))
	assert.Equal(t, ts(t, "2025-03-10 10:00:00"), ns[2].Time)
	// Input untouched.
	assert.Equal(t, ts(t, "2025-03-10 10:00:00"), events[0].Time)
}
