package scheduler

import (
	"context"
	"errors"
	"time"

	cctx "github.com/vnykmshr/cadence/pkg/common/context"
	"github.com/vnykmshr/cadence/pkg/common/validation"
)

// ErrLoopRunning is returned when a driver loop is started on a scheduler
// that already has one running.
var ErrLoopRunning = errors.New("scheduler: driver loop already running")

// RunLoop repeatedly dispatches due tasks and sleeps until the next one is
// due, until ctx is done. It returns nil on cancellation and the dispatch
// error if a task fails (see RunPending).
//
// The wait between passes is a single timer wait that also ends early on
// cancellation or when tasks are registered or reset. With no tasks
// registered the loop blocks until one of those happens.
func (s *Scheduler) RunLoop(ctx context.Context) error {
	return s.run(ctx, 0, false)
}

// RunFor is RunLoop with a time budget: it also returns nil once maxDuration
// has elapsed since it was called. Waits are clipped to the remaining budget,
// so with nothing due RunFor sleeps out the whole budget in one wait.
// A zero budget returns without dispatching.
func (s *Scheduler) RunFor(ctx context.Context, maxDuration time.Duration) error {
	if err := validation.ValidateNonNegativeDuration(module, "maxDuration", maxDuration); err != nil {
		return err
	}
	return s.run(ctx, maxDuration, true)
}

func (s *Scheduler) run(ctx context.Context, maxDuration time.Duration, bounded bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer s.running.Store(false)

	// Changes made before the loop started are already visible to it.
	select {
	case <-s.wake:
	default:
	}

	start := s.clock.Now()
	s.log.Debug().Dur("max_duration", maxDuration).Bool("bounded", bounded).Msg("driver loop started")
	defer func() {
		s.log.Debug().Dur("elapsed", s.clock.Since(start)).Msg("driver loop stopped")
	}()

	rec := s.recorder()

	for !cctx.IsCanceled(ctx) {
		if bounded && s.clock.Since(start) >= maxDuration {
			return nil
		}

		if err := s.RunPending(ctx); err != nil {
			s.log.Debug().Err(err).Msg("driver loop aborted by task failure")
			return err
		}

		wait, scheduled := s.untilNextDue()
		if bounded {
			remaining := maxDuration - s.clock.Since(start)
			if !scheduled || remaining < wait {
				wait = remaining
				scheduled = true
			}
		}

		if !scheduled {
			select {
			case <-ctx.Done():
			case <-s.wake:
			}
			continue
		}

		if wait > 0 {
			rec.waited(wait)
			reason := cctx.Sleep(ctx, s.clock, wait, s.wake)
			s.log.Debug().Dur("wait", wait).Stringer("reason", reason).Msg("driver loop woke")
		}
	}

	return nil
}

// Running reports whether a driver loop is active.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}
