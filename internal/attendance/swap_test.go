package attendance_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
)

// sample builds n events labelled IN at inHour and n labelled OUT at outHour.
func sample(n, inHour, outHour int) []attendance.RawEvent {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var evs []attendance.RawEvent
	for i := 0; i < n; i++ {
		d := base.AddDate(0, 0, i)
		evs = append(evs,
			attendance.RawEvent{Time: d.Add(time.Duration(inHour) * time.Hour), Flag: attendance.Flag(attendance.In)},
			attendance.RawEvent{Time: d.Add(time.Duration(outHour) * time.Hour), Flag: attendance.Flag(attendance.Out)},
		)
	}
	return evs
}

// =============================================================================
// DETECTOR
// =============================================================================

func TestSwapDetector_InvertedWiringIsDetected(t *testing.T) {
	d := attendance.NewSwapDetector(attendance.DefaultSwapConfig())

	// Labelled IN at 05:00 and labelled OUT at 14:00.
	ev := d.Evaluate(sample(30, 5, 14))

	assert.Equal(t, 60, ev.Samples)
	assert.InDelta(t, 1.0, ev.InRatio, 1e-9)
	assert.InDelta(t, 1.0, ev.OutRatio, 1e-9)
	assert.True(t, ev.Swap)
}

func TestSwapDetector_NormalWiring(t *testing.T) {
	d := attendance.NewSwapDetector(attendance.DefaultSwapConfig())

	ev := d.Evaluate(sample(30, 9, 17))

	assert.False(t, ev.Swap)
}

func TestSwapDetector_TooFewSamplesNeverSwaps(t *testing.T) {
	d := attendance.NewSwapDetector(attendance.DefaultSwapConfig())

	evs := sample(24, 5, 14) // 48 usable
	for i := 0; i < 20; i++ {
		evs = append(evs, attendance.RawEvent{Time: time.Date(2025, 4, 1, 3, 0, 0, 0, time.UTC)})
	}

	for i := 0; i < 3; i++ {
		ev := d.Evaluate(evs)
		assert.Equal(t, 48, ev.Samples)
		assert.False(t, ev.Swap)
	}
}

func TestSwapDetector_OneSidedSampleNeverSwaps(t *testing.T) {
	d := attendance.NewSwapDetector(attendance.DefaultSwapConfig())
	var evs []attendance.RawEvent
	for i := 0; i < 60; i++ {
		evs = append(evs, attendance.RawEvent{
			Time: time.Date(2025, 3, 1, 4, i, 0, 0, time.UTC),
			Flag: attendance.Flag(attendance.In),
		})
	}

	assert.False(t, d.Evaluate(evs).Swap)
}

func TestSwapDetector_ThresholdIsStrict(t *testing.T) {
	d := attendance.NewSwapDetector(attendance.SwapConfig{MinSamples: 10, RatioThreshold: 0.5})
	// Half of the INs early, all OUTs late: in_ratio == 0.5 is not enough.
	evs := append(sample(5, 5, 14), sample(5, 9, 14)...)

	ev := d.Evaluate(evs)

	assert.InDelta(t, 0.5, ev.InRatio, 1e-9)
	assert.False(t, ev.Swap)
}

// =============================================================================
// MAPPING RESOLVER
// =============================================================================

type fakeSamples struct {
	mu    sync.Mutex
	calls int
	evs   []attendance.RawEvent
	err   error
}

func (f *fakeSamples) RecentEvents(_ context.Context, _ attendance.VariantPlan, limit int) ([]attendance.RawEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.evs) > limit {
		return f.evs[:limit], nil
	}
	return f.evs, nil
}

type fakeRecorder struct {
	snaps []attendance.MappingSnapshot
}

func (f *fakeRecorder) RecordMappingSnapshot(_ context.Context, s attendance.MappingSnapshot) error {
	f.snaps = append(f.snaps, s)
	return nil
}

func inOutPlan() attendance.VariantPlan {
	return attendance.VariantPlan{Variant: attendance.VariantInOutOnly, Rule: attendance.NormalizedRule(false)}
}

func TestMappingResolver_CachesWithinTTL(t *testing.T) {
	src := &fakeSamples{evs: sample(30, 5, 14)}
	rec := &fakeRecorder{}
	r := attendance.NewMappingResolver(src, rec, attendance.MappingConfig{TTL: 300 * time.Second})
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })
	ctx := context.Background()

	st, err := r.State(ctx, inOutPlan())
	require.NoError(t, err)
	assert.Equal(t, attendance.MappingSwapped, st.MappingVariant)
	assert.True(t, st.SwapApplied)
	assert.True(t, st.AutoDetected)

	now = now.Add(299 * time.Second)
	_, err = r.State(ctx, inOutPlan())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	now = now.Add(2 * time.Second)
	_, err = r.State(ctx, inOutPlan())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
	assert.Len(t, rec.snaps, 2)
	assert.Equal(t, 60, rec.snaps[0].Samples)
}

func TestMappingResolver_OtherVariantIsMiss(t *testing.T) {
	src := &fakeSamples{evs: sample(30, 9, 17)}
	r := attendance.NewMappingResolver(src, nil, attendance.MappingConfig{})
	ctx := context.Background()

	st, err := r.State(ctx, inOutPlan())
	require.NoError(t, err)
	assert.Equal(t, attendance.MappingNormal, st.MappingVariant)

	text := attendance.VariantPlan{Variant: attendance.VariantEventTextOnly, Rule: attendance.EntryExitRule()}
	st, err = r.State(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, attendance.VariantEventTextOnly, st.DetectorVariant)
	assert.Equal(t, 2, src.calls)
}

func TestMappingResolver_ManualOverrideSkipsSampling(t *testing.T) {
	src := &fakeSamples{}
	r := attendance.NewMappingResolver(src, nil, attendance.MappingConfig{ManualSwap: true})

	st, err := r.State(context.Background(), inOutPlan())

	require.NoError(t, err)
	assert.Equal(t, attendance.MappingState{
		MappingVariant:  attendance.MappingSwapped,
		SwapApplied:     true,
		DetectorVariant: attendance.VariantInOutOnly,
		ManualOverride:  true,
	}, st)
	assert.Zero(t, src.calls)
}

func TestMappingResolver_Unsupported(t *testing.T) {
	src := &fakeSamples{}
	r := attendance.NewMappingResolver(src, nil, attendance.MappingConfig{ManualSwap: true})

	st, err := r.State(context.Background(), attendance.VariantPlan{Variant: attendance.VariantUnsupported})

	require.NoError(t, err)
	assert.Equal(t, attendance.MappingUnsupported, st.MappingVariant)
	assert.False(t, st.SwapApplied)
	assert.Zero(t, src.calls)
}

func TestMappingResolver_SampleErrorPropagatesAndIsNotCached(t *testing.T) {
	src := &fakeSamples{err: errors.New("vendor down")}
	r := attendance.NewMappingResolver(src, nil, attendance.MappingConfig{})
	ctx := context.Background()

	_, err := r.State(ctx, inOutPlan())
	require.Error(t, err)

	src.err = nil
	src.evs = sample(30, 9, 17)
	st, err := r.State(ctx, inOutPlan())
	require.NoError(t, err)
	assert.Equal(t, attendance.MappingNormal, st.MappingVariant)
}

func TestMappingResolver_ConcurrentCallers(t *testing.T) {
	src := &fakeSamples{evs: sample(30, 9, 17)}
	r := attendance.NewMappingResolver(src, nil, attendance.MappingConfig{})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := r.State(context.Background(), inOutPlan())
			if err == nil && st.SwapApplied {
				err = fmt.Errorf("unexpected swap")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
