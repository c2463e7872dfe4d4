package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	cerrors "github.com/vnykmshr/cadence/pkg/common/errors"
	"github.com/vnykmshr/cadence/pkg/common/validation"
)

// RegisterCron adds a task driven by a cron expression, evaluated in
// Config.Location. Five-field, six-field (leading seconds) and descriptor
// forms are accepted:
//
//	"*/30 * * * * *"  - every 30 seconds
//	"0 3 * * *"       - 03:00 every day
//	"@hourly"         - top of every hour
//	"@every 90s"      - fixed interval, same as Register with 90s
//
// "@every" expressions become ordinary interval tasks. Calendar expressions
// follow the same skip-ahead policy as interval tasks: when several
// activations have passed, the task fires once and the rest count as missed.
func (s *Scheduler) RegisterCron(name, expr string, task Task) error {
	if err := validateTask(name, task); err != nil {
		return err
	}
	if err := validation.ValidateNotEmpty(module, "expr", expr); err != nil {
		return err
	}

	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return cerrors.NewValidationError(module, "expr", expr, err.Error()).
			WithHint("use 5 or 6 cron fields or a descriptor such as @hourly")
	}

	e := &entry{
		name: name,
		job:  task,
		expr: expr,
	}

	if every, ok := schedule.(cron.ConstantDelaySchedule); ok {
		e.trigger = intervalTrigger(every.Delay)
		e.interval = every.Delay
	} else {
		e.trigger = calendarTrigger{schedule: schedule, location: s.location}
	}

	return s.add(e)
}

// cronParser accepts five or six fields (leading seconds) and descriptors.
var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateCron reports whether expr would be accepted by RegisterCron.
func ValidateCron(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return cerrors.NewValidationError(module, "expr", expr, err.Error()).
			WithHint("use 5 or 6 cron fields or a descriptor such as @hourly")
	}
	return nil
}

// calendarTrigger follows a cron schedule in wall-clock time.
type calendarTrigger struct {
	schedule cron.Schedule
	location *time.Location
}

// next returns the zero time if the schedule has no further activation.
func (t calendarTrigger) next(anchor time.Time) time.Time {
	return t.schedule.Next(anchor.In(t.location))
}

func (t calendarTrigger) advance(anchor, now time.Time) (time.Time, int64) {
	var whole int64
	for {
		next := t.next(anchor)
		if next.IsZero() || next.After(now) {
			return anchor, whole
		}
		anchor = next
		whole++
	}
}
