package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/logging"
	"github.com/BrandonDHaskell/timekeep/internal/metrics"
)

// DefaultMappingTTL is how long an auto-detected mapping state is reused.
const DefaultMappingTTL = 300 * time.Second

// SampleSource returns the most recent events (newest first is fine) with
// nominal flags decoded by plan.
type SampleSource interface {
	RecentEvents(ctx context.Context, plan VariantPlan, limit int) ([]RawEvent, error)
}

// MappingSnapshot is one persisted detector outcome.
type MappingSnapshot struct {
	ID              int64
	DetectorVariant Variant
	SwapApplied     bool
	AutoDetected    bool
	ManualOverride  bool
	Samples         int
	InRatio         float64
	OutRatio        float64
	DetectedAt      time.Time
}

// SnapshotRecorder persists detector outcomes. Optional.
type SnapshotRecorder interface {
	RecordMappingSnapshot(ctx context.Context, s MappingSnapshot) error
}

// MappingConfig configures a MappingResolver.
type MappingConfig struct {
	// ManualSwap pins the mapping to swapped without sampling.
	ManualSwap bool
	TTL        time.Duration
	Swap       SwapConfig
}

type cachedMapping struct {
	state MappingState
	at    time.Time
}

// MappingResolver owns the TTL cache of the live polarity interpretation.
type MappingResolver struct {
	samples  SampleSource
	recorder SnapshotRecorder
	detector SwapDetector
	manual   bool
	ttl      time.Duration
	now      func() time.Time

	mu     sync.RWMutex
	cached *cachedMapping
}

// NewMappingResolver builds a resolver. recorder may be nil.
func NewMappingResolver(samples SampleSource, recorder SnapshotRecorder, cfg MappingConfig) *MappingResolver {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultMappingTTL
	}
	return &MappingResolver{
		samples:  samples,
		recorder: recorder,
		detector: NewSwapDetector(cfg.Swap),
		manual:   cfg.ManualSwap,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Tests only.
func (r *MappingResolver) SetClock(now func() time.Time) { r.now = now }

// State returns the mapping state for plan, sampling recent events when
// the cache is empty, expired, or holds another variant.
func (r *MappingResolver) State(ctx context.Context, plan VariantPlan) (MappingState, error) {
	if !plan.Supported() {
		return MappingState{
			MappingVariant:  MappingUnsupported,
			DetectorVariant: plan.Variant,
		}, nil
	}

	if r.manual {
		return MappingState{
			MappingVariant:  MappingSwapped,
			SwapApplied:     true,
			DetectorVariant: plan.Variant,
			ManualOverride:  true,
		}, nil
	}

	now := r.now()
	r.mu.RLock()
	cached := r.cached
	r.mu.RUnlock()
	if cached != nil && now.Sub(cached.at) < r.ttl && cached.state.DetectorVariant == plan.Variant {
		metrics.MappingCacheHits.Inc()
		return cached.state, nil
	}
	metrics.MappingCacheMisses.Inc()

	sample, err := r.samples.RecentEvents(ctx, plan, r.detector.SampleLimit())
	if err != nil {
		return MappingState{}, fmt.Errorf("mapping sample: %w", err)
	}
	ev := r.detector.Evaluate(sample)

	state := MappingState{
		MappingVariant:  MappingNormal,
		SwapApplied:     ev.Swap,
		DetectorVariant: plan.Variant,
		AutoDetected:    ev.Swap,
	}
	if ev.Swap {
		state.MappingVariant = MappingSwapped
	}

	r.mu.Lock()
	r.cached = &cachedMapping{state: state, at: now}
	r.mu.Unlock()

	metrics.RecordMappingEvaluation(string(plan.Variant), ev.Swap)
	logging.Debug().
		Str("component", "mapping").
		Str("variant", string(plan.Variant)).
		Int("samples", ev.Samples).
		Float64("in_ratio", ev.InRatio).
		Float64("out_ratio", ev.OutRatio).
		Bool("swap", ev.Swap).
		Msg("mapping state evaluated")

	if r.recorder != nil {
		snap := MappingSnapshot{
			DetectorVariant: plan.Variant,
			SwapApplied:     ev.Swap,
			AutoDetected:    ev.Swap,
			Samples:         ev.Samples,
			InRatio:         ev.InRatio,
			OutRatio:        ev.OutRatio,
			DetectedAt:      now,
		}
		if err := r.recorder.RecordMappingSnapshot(ctx, snap); err != nil {
			logging.Warn().Err(err).Str("component", "mapping").Msg("record mapping snapshot")
		}
	}

	return state, nil
}
