// Package metrics provides Prometheus instrumentation for cadence components.
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	s := scheduler.NewWithMetrics("jobs")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	reg := prometheus.NewRegistry()
//	s := scheduler.NewWithConfigAndMetrics(scheduler.Config{}, "jobs", metrics.Config{
//		Enabled:  true,
//		Registry: reg,
//	})
//
// # Available Metrics
//
//   - cadence_scheduler_tasks_registered: tasks currently in the registry
//   - cadence_scheduler_dispatch_passes_total: dispatch passes performed
//   - cadence_scheduler_tasks_executed_total: callback invocations
//   - cadence_scheduler_tasks_failed_total: callbacks that failed or panicked
//   - cadence_scheduler_missed_executions_total: slots skipped without an invocation
//   - cadence_scheduler_task_duration_seconds: callback run time
//   - cadence_scheduler_loop_wait_seconds: planned driver-loop sleeps
//
// All metrics carry a scheduler_name label; per-task metrics add task_name.
package metrics
