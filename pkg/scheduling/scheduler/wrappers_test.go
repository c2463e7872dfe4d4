package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/cadence/internal/testutil"
)

var errFlaky = errors.New("flaky")

func failingTimes(n int32, attempts *int32) Task {
	return TaskFunc(func(_ context.Context) error {
		if atomic.AddInt32(attempts, 1) <= n {
			return errFlaky
		}
		return nil
	})
}

func TestWithRetry_EventuallySucceeds(t *testing.T) {
	var attempts, notified int32
	task := WithRetry(failingTimes(2, &attempts), RetryConfig{
		InitialInterval: time.Millisecond,
		MaxRetries:      3,
		OnRetry: func(err error, _ time.Duration) {
			if errors.Is(err, errFlaky) {
				atomic.AddInt32(&notified, 1)
			}
		},
	})

	testutil.AssertNoError(t, task.Execute(context.Background()))
	testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(3))
	testutil.AssertEqual(t, atomic.LoadInt32(&notified), int32(2))
}

func TestWithRetry_GivesUp(t *testing.T) {
	var attempts int32
	task := WithRetry(failingTimes(100, &attempts), RetryConfig{
		InitialInterval: time.Millisecond,
		MaxRetries:      2,
	})

	err := task.Execute(context.Background())
	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected last task error, got %v", err)
	}
	testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(3))
}

func TestWithRetry_Permanent(t *testing.T) {
	var attempts int32
	task := WithRetry(TaskFunc(func(_ context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return Permanent(errFlaky)
	}), RetryConfig{InitialInterval: time.Millisecond})

	err := task.Execute(context.Background())
	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(1))
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var attempts int32
	task := WithRetry(failingTimes(100, &attempts), RetryConfig{InitialInterval: time.Hour})

	err := task.Execute(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(1))
}

func TestWithRetry_InsideDispatch(t *testing.T) {
	s, mock := newMockScheduler(Config{})

	var attempts int32
	testutil.AssertNoError(t, s.Register("flaky", time.Second,
		WithRetry(failingTimes(1, &attempts), RetryConfig{InitialInterval: time.Millisecond})))

	mock.Add(time.Second)
	testutil.AssertNoError(t, s.RunPending(context.Background()))
	testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(2))
	testutil.AssertEqual(t, s.Tasks()[0].Runs, uint64(1))
}

func TestWithTimeout(t *testing.T) {
	task := WithTimeout(TaskFunc(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		<-ctx.Done()
		return ctx.Err()
	}), 10*time.Millisecond)

	start := time.Now()
	err := task.Execute(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestWithCondition(t *testing.T) {
	var enabled atomic.Bool
	var calls int32
	task := WithCondition(TaskFunc(func(_ context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}), func(context.Context) bool { return enabled.Load() })

	testutil.AssertNoError(t, task.Execute(context.Background()))
	testutil.AssertEqual(t, atomic.LoadInt32(&calls), int32(0))

	enabled.Store(true)
	testutil.AssertNoError(t, task.Execute(context.Background()))
	testutil.AssertEqual(t, atomic.LoadInt32(&calls), int32(1))
}
