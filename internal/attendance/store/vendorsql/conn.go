package vendorsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	"github.com/BrandonDHaskell/timekeep/internal/logging"
	"github.com/BrandonDHaskell/timekeep/internal/metrics"
)

const breakerName = "vendor-db"

// BreakerConfig tunes the circuit breaker around vendor queries.
type BreakerConfig struct {
	MaxRequests  uint32        // allowed in half-open state
	Interval     time.Duration // closed-state count reset
	Timeout      time.Duration // open -> half-open
	MinRequests  uint32
	FailureRatio float64
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

type Options struct {
	QueryTimeout time.Duration
	Breaker      BreakerConfig
}

// Conn is the vendor database handle shared by Catalog and Store. Every
// query runs under the circuit breaker and a per-query timeout.
type Conn struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[any]
}

func NewConn(db *sql.DB, dialect Dialect, opts Options) *Conn {
	bc := opts.Breaker
	if bc.MaxRequests == 0 {
		bc = DefaultBreakerConfig()
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := ratio >= bc.FailureRatio
			if trip {
				logging.Warn().
					Str("component", "vendorsql").
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("opening vendor circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("component", "vendorsql").
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("vendor circuit state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		// A caller giving up is not a vendor failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Conn{db: db, dialect: dialect, timeout: opts.QueryTimeout, cb: cb}
}

// Dialect returns the SQL dialect of the connection.
func (c *Conn) Dialect() Dialect { return c.dialect }

// BreakerState reports the current circuit state.
func (c *Conn) BreakerState() gobreaker.State { return c.cb.State() }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// run executes fn under the breaker, the query timeout and the query
// metrics. op labels the metrics and prefixes errors.
func run[T any](ctx context.Context, c *Conn, op string, fn func(ctx context.Context, db *sql.DB) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	res, err := c.cb.Execute(func() (any, error) {
		qctx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			qctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		return fn(qctx, c.db)
	})
	metrics.RecordVendorQuery(op, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			return zero, fmt.Errorf("%s: %w", op, store.ErrVendorUnavailable)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()

	v, _ := res.(T)
	return v, nil
}
