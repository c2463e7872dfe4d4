// Package context holds small helpers around context.Context used by the
// scheduler's driver loop.
package context

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// WakeReason reports why Sleep returned.
type WakeReason int

const (
	// Elapsed means the full duration passed.
	Elapsed WakeReason = iota
	// Canceled means the context was done before the duration passed.
	Canceled
	// Woken means the wake channel fired before the duration passed.
	Woken
)

func (r WakeReason) String() string {
	switch r {
	case Elapsed:
		return "elapsed"
	case Canceled:
		return "canceled"
	case Woken:
		return "woken"
	default:
		return "unknown"
	}
}

// IsCanceled returns true if the context has been canceled
func IsCanceled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// IsTimedOut returns true if the context was canceled due to a timeout
func IsTimedOut(ctx context.Context) bool {
	return ctx.Err() == context.DeadlineExceeded
}

// Sleep blocks for d as measured by clk, returning early when ctx is done or
// when wake receives a value. A nil wake channel is never selected.
// Non-positive durations return Elapsed immediately unless ctx is already done.
func Sleep(ctx context.Context, clk clock.Clock, d time.Duration, wake <-chan struct{}) WakeReason {
	if IsCanceled(ctx) {
		return Canceled
	}
	if d <= 0 {
		return Elapsed
	}

	timer := clk.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Canceled
	case <-wake:
		return Woken
	case <-timer.C:
		return Elapsed
	}
}
