package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	"github.com/BrandonDHaskell/timekeep/internal/metrics"
)

// RunPruner periodically deletes report runs older than a configurable
// retention period. It runs as a background goroutine and is stopped via
// its context or the Stop method.
//
// A retention of 0 disables pruning entirely.
type RunPruner struct {
	store     store.ReportRunStore
	retention time.Duration
	interval  time.Duration
	logger    zerolog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once
}

// PrunerConfig holds the parameters for NewRunPruner.
type PrunerConfig struct {
	// RetentionDays is how many days of report runs to keep.
	// 0 means keep everything (pruner will not start).
	RetentionDays int

	// IntervalHours is how often the pruner runs. Defaults to 6.
	IntervalHours int
}

// NewRunPruner creates a pruner but does not start it.
func NewRunPruner(s store.ReportRunStore, cfg PrunerConfig, logger zerolog.Logger) *RunPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	return &RunPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger.With().Str("component", "run_pruner").Logger(),
		done:      make(chan struct{}),
	}
}

// Start runs an immediate prune, then repeats on the configured interval
// until ctx is cancelled or Stop is called. Later calls are no-ops.
func (p *RunPruner) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		if p.retention <= 0 {
			p.logger.Info().Msg("report run pruner disabled (retention=0)")
			close(p.done)
			return
		}

		ctx, p.cancel = context.WithCancel(ctx)
		go p.loop(ctx)

		p.logger.Info().
			Int("retention_days", int(p.retention.Hours()/24)).
			Int("interval_hours", int(p.interval.Hours())).
			Msg("report run pruner started")
	})
}

// Stop signals the pruner to exit and waits for it to finish.
func (p *RunPruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

// Serve adapts the pruner to a supervisor: it blocks until ctx is done.
func (p *RunPruner) Serve(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
	return ctx.Err()
}

func (p *RunPruner) loop(ctx context.Context) {
	defer close(p.done)

	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *RunPruner) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-p.retention)
	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error().Err(err).Msg("report run prune failed")
		return
	}
	if deleted > 0 {
		metrics.ReportRunsPruned.Add(float64(deleted))
		p.logger.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("report runs pruned")
	}
}
