package scheduler

import (
	"time"

	"github.com/vnykmshr/cadence/pkg/metrics"
)

var _ metrics.Instrumentable = (*Scheduler)(nil)

// NewWithMetrics creates a scheduler named name that reports to
// metrics.DefaultRegistry.
func NewWithMetrics(name string) *Scheduler {
	return NewWithConfigAndMetrics(Config{Name: name}, name, metrics.DefaultConfig())
}

// NewWithConfigAndMetrics creates a scheduler with custom config and metrics.
// The name argument overrides cfg.Name. If the metrics registry cannot be
// built (for example because the collectors are already registered with
// metricsConfig.Registry) the scheduler is returned without metrics.
func NewWithConfigAndMetrics(cfg Config, name string, metricsConfig metrics.Config) *Scheduler {
	if name != "" {
		cfg.Name = name
	}
	s := NewWithConfig(cfg)

	if err := s.EnableMetrics(metricsConfig); err != nil {
		s.log.Warn().Err(err).Msg("metrics disabled")
	}
	return s
}

// EnableMetrics enables metrics collection. A nil config.Registry selects
// metrics.DefaultRegistry; config.Enabled false is the same as DisableMetrics.
func (s *Scheduler) EnableMetrics(config metrics.Config) error {
	if !config.Enabled {
		s.DisableMetrics()
		return nil
	}

	registry := metrics.DefaultRegistry
	if config.Registry != nil {
		var err error
		registry, err = metrics.TryNewRegistry(config.Registry)
		if err != nil {
			return err
		}
	}

	r := &recorder{scheduler: s.name, registry: registry}
	s.rec.Store(r)
	r.registered(s.Len())
	return nil
}

// DisableMetrics disables metrics collection.
func (s *Scheduler) DisableMetrics() {
	s.rec.Store(nil)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (s *Scheduler) MetricsEnabled() bool {
	return s.rec.Load() != nil
}

func (s *Scheduler) recorder() *recorder {
	return s.rec.Load()
}

// recorder writes scheduler events to a metrics registry. A nil recorder
// discards everything.
type recorder struct {
	scheduler string
	registry  *metrics.Registry
}

func (r *recorder) registered(n int) {
	if r == nil {
		return
	}
	r.registry.TasksRegistered.WithLabelValues(r.scheduler).Set(float64(n))
}

func (r *recorder) pass() {
	if r == nil {
		return
	}
	r.registry.DispatchPasses.WithLabelValues(r.scheduler).Inc()
}

func (r *recorder) missed(task string, n uint64) {
	if r == nil {
		return
	}
	r.registry.MissedExecutions.WithLabelValues(r.scheduler, task).Add(float64(n))
}

func (r *recorder) executed(task string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.registry.TaskExecutionDuration.WithLabelValues(r.scheduler, task).Observe(d.Seconds())
	r.registry.TasksExecuted.WithLabelValues(r.scheduler, task).Inc()
	if err != nil {
		r.registry.TasksFailed.WithLabelValues(r.scheduler, task).Inc()
	}
}

func (r *recorder) waited(d time.Duration) {
	if r == nil {
		return
	}
	r.registry.LoopWaitDuration.WithLabelValues(r.scheduler).Observe(d.Seconds())
}
