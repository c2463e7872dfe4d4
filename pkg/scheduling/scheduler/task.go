package scheduler

import (
	"context"
	"math"
	"time"
)

// Task is a unit of periodic work.
type Task interface {
	// Execute runs one firing of the task. The context is the one handed to
	// RunPending or the driver loop; the scheduler never interrupts a running
	// Execute.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// TaskInfo is a point-in-time snapshot of a registered task.
type TaskInfo struct {
	Name string

	// Interval is the firing period. Zero for calendar cron tasks.
	Interval time.Duration

	// Expr is the cron expression the task was registered with, if any.
	Expr string

	// Anchor is the last schedule slot that has been accounted for.
	Anchor time.Time

	// NextDue is the nominal time of the next firing. Zero if a calendar
	// schedule has no further activations.
	NextDue time.Time

	// Missed counts slots that elapsed without their own invocation.
	Missed uint64

	// Runs counts callback invocations.
	Runs uint64

	// Created is when the task was registered.
	Created time.Time
}

// Seconds converts a number of seconds into a time.Duration, rounded to the
// nearest nanosecond.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// trigger computes schedule slots relative to an anchor.
type trigger interface {
	// next returns the first slot strictly after anchor.
	next(anchor time.Time) time.Time

	// advance returns the latest slot not after now and the number of slots
	// in (anchor, now]. When that number is zero the anchor is returned as-is.
	advance(anchor, now time.Time) (time.Time, int64)
}

type intervalTrigger time.Duration

func (t intervalTrigger) next(anchor time.Time) time.Time {
	return anchor.Add(time.Duration(t))
}

func (t intervalTrigger) advance(anchor, now time.Time) (time.Time, int64) {
	interval := time.Duration(t)
	elapsed := now.Sub(anchor)
	if elapsed < interval {
		return anchor, 0
	}
	whole := int64(elapsed / interval)
	return anchor.Add(time.Duration(whole) * interval), whole
}

// entry is the registry's record of one task. Mutable fields are guarded by
// the owning Scheduler's mutex.
type entry struct {
	name     string
	job      Task
	trigger  trigger
	interval time.Duration
	expr     string
	created  time.Time

	anchor time.Time
	missed uint64
	runs   uint64
}

func (e *entry) nextDue() time.Time {
	return e.trigger.next(e.anchor)
}

func (e *entry) info() TaskInfo {
	return TaskInfo{
		Name:     e.name,
		Interval: e.interval,
		Expr:     e.expr,
		Anchor:   e.anchor,
		NextDue:  e.nextDue(),
		Missed:   e.missed,
		Runs:     e.runs,
		Created:  e.created,
	}
}
