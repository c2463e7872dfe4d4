/*
Package scheduler runs recurring tasks at fixed intervals inside a long-lived
process, without drift, and reports how many scheduled firings were skipped.

Basic Usage:

	s := scheduler.New()

	flush := scheduler.TaskFunc(func(ctx context.Context) error {
		return buffer.Flush(ctx)
	})

	if err := s.Register("flush", 5*time.Second, flush); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Blocks until ctx is canceled or a task fails.
	return s.RunLoop(ctx)

Scheduling Model:

Each task keeps an anchor: the last slot of its interval grid that has been
accounted for. A task is due once a full interval has passed since its
anchor. When a dispatch pass finds it due, the anchor moves forward by the
whole number of intervals that have elapsed, never to "now", so late or
jittery passes do not shift later due times. If more than one interval has
elapsed the task still fires only once and the extra slots are added to its
missed count.

For a task registered at t=0 with a 1s interval:

	pass at t=1.0s  -> fires, anchor=1.0s, missed=0, next due 2.0s
	pass at t=3.5s  -> fires once, anchor=3.0s, missed=1, next due 4.0s

Registration Forms:

	s.Register("sync", time.Minute, task)        // duration
	s.RegisterSeconds("sync", 0.25, task)        // seconds
	every := s.Every(time.Hour)                  // curried interval
	_ = every("rotate", rotateTask)
	s.RegisterCron("report", "0 9 * * MON-FRI", reportTask)

Intervals must be positive; invalid arguments are rejected with an
*errors.ValidationError. Individual tasks cannot be removed; Reset clears
the whole registry.

Driver Loop:

RunPending performs a single pass. RunLoop and RunFor repeat passes and
sleep exactly until the next task is due, waking early on cancellation or
when the registry changes:

	// Run for at most ten minutes.
	err := s.RunFor(ctx, 10*time.Minute)

Only one loop may run per Scheduler at a time.

Error Handling:

Dispatch is fail-fast by default. The first task error ends the pass and
is returned from RunPending, RunLoop or RunFor, wrapped in an
*errors.OperationError naming the task. Panics propagate. The failing
task's anchor has already advanced, so a retried pass does not fire it
again early. Setting Config.IsolateFailures instead logs the failure,
passes it to Config.OnError, recovers panics and keeps dispatching.

Concurrency:

Tasks run one at a time on the goroutine that drives the scheduler; a slow
task delays every task behind it. Registration, Reset and introspection
are safe from any goroutine, including from inside a running task.

Observability:

Config.Logger takes a zerolog logger. NewWithMetrics and
NewWithConfigAndMetrics export Prometheus metrics (see package metrics),
including a per-task missed_executions_total counter. Tasks returns
snapshots with the same counts.

Testing:

Config.Clock accepts any github.com/benbjohnson/clock Clock, so tests can
drive the scheduler with clock.NewMock.
*/
package scheduler
