/*
Package cadence provides a drift-free periodic task scheduler for Go services.

Scheduling (pkg/scheduling):
  - scheduler: Interval and cron tasks fired on a fixed phase-anchored grid

Jobs (pkg/jobs):
  - heartbeat: Redis liveness heartbeat ready to register as a task

Common (pkg/common, pkg/metrics):
  - errors: Validation and operation errors
  - validation: Parameter validators
  - context: Interruptible timed waits
  - metrics: Prometheus collectors for schedulers

Example usage:

	import "github.com/vnykmshr/cadence/pkg/scheduling/scheduler"

	s := scheduler.New()
	_ = s.Register("flush", 10*time.Second, scheduler.TaskFunc(flush))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	_ = s.RunLoop(ctx)
*/
package cadence
