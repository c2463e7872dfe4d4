package testutil

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// CountingClock wraps a clock.Clock and counts the timers created through it.
// Tests use it to tell when a driver loop has gone to sleep, and how many
// times.
type CountingClock struct {
	clock.Clock
	timers atomic.Int64
}

// NewCountingClock wraps c.
func NewCountingClock(c clock.Clock) *CountingClock {
	return &CountingClock{Clock: c}
}

// Timer creates a timer on the wrapped clock.
func (c *CountingClock) Timer(d time.Duration) *clock.Timer {
	c.timers.Add(1)
	return c.Clock.Timer(d)
}

// Timers returns the number of timers created so far.
func (c *CountingClock) Timers() int64 {
	return c.timers.Load()
}

// CallRecorder records labelled calls in order and is safe for concurrent use.
type CallRecorder struct {
	mu    sync.Mutex
	calls []string
}

// NewCallRecorder creates an empty CallRecorder.
func NewCallRecorder() *CallRecorder {
	return &CallRecorder{}
}

// Record appends name to the call log.
func (r *CallRecorder) Record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

// Calls returns a copy of the call log.
func (r *CallRecorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times name was recorded.
func (r *CallRecorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

// Reset clears the call log.
func (r *CallRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
