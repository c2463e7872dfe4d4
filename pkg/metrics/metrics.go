// Package metrics provides Prometheus instrumentation for cadence components.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "cadence"
	subsystem = "scheduler"
)

// Registry holds all metric instances for the periodic scheduler.
type Registry struct {
	TasksRegistered       *prometheus.GaugeVec
	DispatchPasses        *prometheus.CounterVec
	TasksExecuted         *prometheus.CounterVec
	TasksFailed           *prometheus.CounterVec
	MissedExecutions      *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec
	LoopWaitDuration      *prometheus.HistogramVec
}

// DefaultRegistry is the default metrics registry used by cadence components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
// Registering twice against the same registerer panics, as promauto does.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		TasksRegistered: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tasks_registered",
				Help:      "Number of tasks currently registered",
			},
			[]string{"scheduler_name"},
		),

		DispatchPasses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dispatch_passes_total",
				Help:      "Total number of dispatch passes over the registry",
			},
			[]string{"scheduler_name"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tasks_executed_total",
				Help:      "Total number of task callback invocations",
			},
			[]string{"scheduler_name", "task_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tasks_failed_total",
				Help:      "Total number of task callbacks that returned an error or panicked",
			},
			[]string{"scheduler_name", "task_name"},
		),

		MissedExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "missed_executions_total",
				Help:      "Total number of scheduled slots skipped without an invocation",
			},
			[]string{"scheduler_name", "task_name"},
		),

		TaskExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "task_duration_seconds",
				Help:      "Time spent executing task callbacks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"scheduler_name", "task_name"},
		),

		LoopWaitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "loop_wait_seconds",
				Help:      "Planned sleep of the driver loop between dispatch passes",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"scheduler_name"},
		),
	}
}

// TryNewRegistry is NewRegistry that reports registration conflicts as an
// error instead of panicking.
func TryNewRegistry(reg prometheus.Registerer) (registry *Registry, err error) {
	defer func() {
		if r := recover(); r != nil {
			registry = nil
			err = fmt.Errorf("metrics: register collectors: %v", r)
		}
	}()
	return NewRegistry(reg), nil
}
