package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func BenchmarkRegister(b *testing.B) {
	s := NewWithConfig(Config{Clock: clock.NewMock(), MaxTasks: b.N + 1})
	task := noop()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Register("bench", time.Second, task); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRunPending(b *testing.B) {
	for _, n := range []int{1, 100, 1000} {
		b.Run(fmt.Sprintf("tasks=%d", n), func(b *testing.B) {
			mock := clock.NewMock()
			s := NewWithConfig(Config{Clock: mock})
			for i := 0; i < n; i++ {
				_ = s.Register(fmt.Sprintf("task-%d", i), time.Second, noop())
			}
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				mock.Add(time.Second)
				if err := s.RunPending(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRunPending_NothingDue(b *testing.B) {
	s := NewWithConfig(Config{Clock: clock.NewMock()})
	for i := 0; i < 100; i++ {
		_ = s.Register(fmt.Sprintf("task-%d", i), time.Hour, noop())
	}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.RunPending(ctx)
	}
}
