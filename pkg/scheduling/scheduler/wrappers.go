package scheduler

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig configures WithRetry. Zero fields take defaults.
type RetryConfig struct {
	// InitialInterval is the delay before the first retry (default: 100ms).
	InitialInterval time.Duration

	// MaxInterval caps the delay between retries (default: 5s).
	MaxInterval time.Duration

	// Multiplier grows the delay after each retry (default: 2).
	Multiplier float64

	// MaxRetries is the number of retries after the first attempt (default: 3).
	MaxRetries int

	// OnRetry is called before each retry with the error that caused it.
	OnRetry func(err error, next time.Duration)
}

func (c RetryConfig) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	if c.InitialInterval > 0 {
		b.InitialInterval = c.InitialInterval
	}
	if c.MaxInterval > 0 {
		b.MaxInterval = c.MaxInterval
	}
	if c.Multiplier > 0 {
		b.Multiplier = c.Multiplier
	}
	b.Reset()

	retries := c.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// WithRetry returns a task that retries task with exponential backoff
// within a single firing. Retries block the dispatch pass, so keep the
// total backoff well below the task's interval. Return Permanent(err) from
// task to stop retrying.
func WithRetry(task Task, cfg RetryConfig) Task {
	return TaskFunc(func(ctx context.Context) error {
		op := func() error { return task.Execute(ctx) }
		return backoff.RetryNotify(op, cfg.backoff(ctx), cfg.OnRetry)
	})
}

// Permanent marks err as not worth retrying by WithRetry.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// WithTimeout returns a task whose context is cancelled after d.
// The task must observe its context for the limit to take effect.
func WithTimeout(task Task, d time.Duration) Task {
	return TaskFunc(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return task.Execute(ctx)
	})
}

// WithCondition returns a task that runs task only when cond reports true.
// A skipped firing still advances the schedule and counts as a run.
func WithCondition(task Task, cond func(context.Context) bool) Task {
	return TaskFunc(func(ctx context.Context) error {
		if !cond(ctx) {
			return nil
		}
		return task.Execute(ctx)
	})
}
