/*
Package scheduling groups the cadence scheduling primitives.

  - scheduler: Cooperative periodic scheduler with missed-execution tracking

Task Scheduler:

Tasks fire on a grid anchored at registration. A task registered at t=0
with a one second interval fires at 1s, 2s, 3s and so on, no matter how
late each dispatch pass runs. Slots that pass while the scheduler is busy
are skipped and counted as missed:

	s := scheduler.New()
	_ = s.Register("report", time.Minute, task)
	_ = s.RegisterCron("nightly", "0 3 * * *", task)

	// Run until ctx is cancelled, or for a fixed budget.
	_ = s.RunLoop(ctx)
	_ = s.RunFor(ctx, time.Hour)

Registration and Reset are safe while the loop runs; tasks execute one at a
time on the loop goroutine.
*/
package scheduling
