package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc runs one refresh cycle.
type TickFunc func(ctx context.Context) error

// Options tune the refresh loop.
type Options struct {
	Interval     time.Duration
	Immediate    bool
	StartupDelay time.Duration
}

// Loop invokes a tick function at a fixed interval until cancelled. Tick
// errors are logged and the loop keeps going; the next tick is the only
// recovery path.
type Loop struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a refresh loop.
func New(opts Options, logger zerolog.Logger) *Loop {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Loop{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context, tick TickFunc) error {
	if l.opts.StartupDelay > 0 {
		if err := sleep(ctx, l.opts.StartupDelay); err != nil {
			return err
		}
	}

	if l.opts.Immediate {
		l.runTick(ctx, tick)
	}

	ticker := time.NewTicker(l.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.runTick(ctx, tick)
		}
	}
}

func (l *Loop) runTick(ctx context.Context, tick TickFunc) {
	l.logger.Debug().Msg("executing scheduled refresh")
	if err := tick(ctx); err != nil {
		l.logger.Error().Err(err).Msg("refresh tick failed")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
