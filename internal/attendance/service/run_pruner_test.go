package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/timekeep/internal/attendance/service"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store/memory"
)

func TestRunPruner_DisabledWhenRetentionZero(t *testing.T) {
	local := memory.NewLocal()
	pruner := service.NewRunPruner(local, service.PrunerConfig{
		RetentionDays: 0,
		IntervalHours: 1,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pruner.Start(ctx)
	// Stop should return immediately without error.
	pruner.Stop()
}

func TestRunPruner_PrunesOldRuns(t *testing.T) {
	local := memory.NewLocal()
	ctx := context.Background()

	old := store.ReportRun{Kind: service.KindDaily, RequestedAt: time.Now().UTC().AddDate(0, 0, -40)}
	recent := store.ReportRun{Kind: service.KindMonthly, RequestedAt: time.Now().UTC().AddDate(0, 0, -1)}
	require.NoError(t, local.RecordRun(ctx, old))
	require.NoError(t, local.RecordRun(ctx, recent))

	pruner := service.NewRunPruner(local, service.PrunerConfig{
		RetentionDays: 30,
		IntervalHours: 1,
	}, zerolog.Nop())
	pruner.Start(ctx)
	defer pruner.Stop()

	// The first prune runs immediately on start.
	require.Eventually(t, func() bool { return len(local.Runs()) == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, service.KindMonthly, local.Runs()[0].Kind)
}

func TestRunPruner_StopIsIdempotent(t *testing.T) {
	pruner := service.NewRunPruner(memory.NewLocal(), service.PrunerConfig{
		RetentionDays: 30,
		IntervalHours: 1,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	pruner.Start(ctx)

	cancel()
	// Multiple stops should not panic.
	pruner.Stop()
	pruner.Stop()
}

func TestRunPruner_ServeReturnsOnCancel(t *testing.T) {
	pruner := service.NewRunPruner(memory.NewLocal(), service.PrunerConfig{RetentionDays: 7}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- pruner.Serve(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}
}
