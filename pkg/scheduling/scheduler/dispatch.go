package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	cerrors "github.com/vnykmshr/cadence/pkg/common/errors"
)

// RunPending performs one dispatch pass: every task whose next slot has
// arrived is fired once, in registration order.
//
// A due task's anchor advances by the whole number of intervals that have
// elapsed, so the firing grid never drifts. Every elapsed slot beyond the
// most recent one is counted as missed; missed slots are never replayed.
// The anchor and missed count are committed before the callback runs.
//
// By default the first callback error stops the pass and is returned as an
// *errors.OperationError wrapping it; tasks after the failing one are left
// for the next pass. Panics are not recovered. With Config.IsolateFailures
// errors and panics are reported through the logger, metrics and OnError
// and the pass continues.
func (s *Scheduler) RunPending(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	pending := make([]*entry, len(s.tasks))
	copy(pending, s.tasks)
	s.mu.Unlock()

	rec := s.recorder()
	rec.pass()

	for _, e := range pending {
		missed, due := s.claim(e)
		if !due {
			continue
		}

		if missed > 0 {
			rec.missed(e.name, missed)
			s.log.Warn().
				Str("task", e.name).
				Uint64("missed", missed).
				Msg("task fell behind schedule, skipping missed slots")
		}

		err := s.execute(ctx, e)
		if err == nil {
			continue
		}

		if !s.isolate {
			return cerrors.NewOperationError(module, "RunPending", err).
				WithContext(fmt.Sprintf("task %q", e.name))
		}

		info := s.snapshot(e)
		s.log.Error().Err(err).Str("task", e.name).Msg("task failed")
		if s.onError != nil {
			s.onError(info, err)
		}
	}

	return nil
}

// claim advances e to the latest slot not after now. It reports whether the
// task is due and how many slots were skipped.
//
// The slot walk runs without the registry lock since calendar catch-up can
// take many steps. The result is committed only if no concurrent pass moved
// the anchor in the meantime.
func (s *Scheduler) claim(e *entry) (uint64, bool) {
	s.mu.Lock()
	from := e.anchor
	s.mu.Unlock()

	anchor, whole := e.trigger.advance(from, s.clock.Now())
	if whole < 1 {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !e.anchor.Equal(from) {
		return 0, false
	}

	missed := uint64(whole - 1)
	e.anchor = anchor
	e.missed += missed
	e.runs++
	return missed, true
}

// execute invokes the task callback and records its outcome.
func (s *Scheduler) execute(ctx context.Context, e *entry) (err error) {
	start := s.clock.Now()
	completed := false

	defer func() {
		if !completed {
			if s.isolate {
				err = fmt.Errorf("%w: %v\nStack trace:\n%s", cerrors.ErrTaskPanicked, recover(), debug.Stack())
			} else {
				err = cerrors.ErrTaskPanicked
			}
		}
		s.recorder().executed(e.name, s.clock.Since(start), err)
	}()

	err = e.job.Execute(ctx)
	completed = true
	return err
}

func (s *Scheduler) snapshot(e *entry) TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.info()
}

// untilNextDue returns how long until the earliest task is due, measured on
// the scheduler clock. It reports false when nothing is scheduled.
func (s *Scheduler) untilNextDue() (time.Duration, bool) {
	due, ok := s.NextDue()
	if !ok {
		return 0, false
	}
	return due.Sub(s.clock.Now()), true
}
