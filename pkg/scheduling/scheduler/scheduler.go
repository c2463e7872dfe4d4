package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	cerrors "github.com/vnykmshr/cadence/pkg/common/errors"
	"github.com/vnykmshr/cadence/pkg/common/validation"
)

const module = "scheduler"

// Config holds scheduler configuration.
type Config struct {
	// Name identifies the scheduler in logs and metrics (default: "default").
	Name string

	// Clock supplies the current time and timers (default: the real clock).
	Clock clock.Clock

	// Location is used to evaluate cron expressions (default: time.Local).
	Location *time.Location

	// MaxTasks caps the registry size (default: 10000).
	MaxTasks int

	// IsolateFailures keeps a dispatch pass going when a task returns an
	// error or panics. The failure is logged, counted and handed to OnError
	// instead of being returned from RunPending.
	IsolateFailures bool

	// OnError is called for each isolated task failure.
	OnError func(info TaskInfo, err error)

	// Logger receives scheduler diagnostics. Nil disables logging.
	Logger *zerolog.Logger
}

// Scheduler owns an ordered registry of periodic tasks and fires them on a
// fixed, drift-free grid.
//
// Registration, Reset and the introspection methods are safe for concurrent
// use. Dispatch is cooperative: callbacks run one at a time on the goroutine
// that calls RunPending or the driver loop.
type Scheduler struct {
	name       string
	clock      clock.Clock
	location   *time.Location
	maxTasks   int
	isolate    bool
	onError    func(TaskInfo, error)
	log        zerolog.Logger

	mu    sync.Mutex
	tasks []*entry

	wake    chan struct{}
	running atomic.Bool
	rec     atomic.Pointer[recorder]
}

// New creates a scheduler with default configuration.
func New() *Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) *Scheduler {
	name := cfg.Name
	if name == "" {
		name = "default"
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	maxTasks := cfg.MaxTasks
	if maxTasks <= 0 {
		maxTasks = 10000
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Scheduler{
		name:       name,
		clock:      clk,
		location:   location,
		maxTasks:   maxTasks,
		isolate:    cfg.IsolateFailures,
		onError:    cfg.OnError,
		log:        logger.With().Str("component", module).Str("scheduler", name).Logger(),
		wake:       make(chan struct{}, 1),
	}
}

// Name returns the scheduler name used in logs and metrics.
func (s *Scheduler) Name() string {
	return s.name
}

// Register adds a task that fires every interval, first due one interval
// from now. Tasks are dispatched in registration order. The same Task value
// may be registered more than once; each registration is independent.
func (s *Scheduler) Register(name string, interval time.Duration, task Task) error {
	if err := validateTask(name, task); err != nil {
		return err
	}
	if err := validation.ValidatePositiveDuration(module, "interval", interval); err != nil {
		return err
	}

	return s.add(&entry{
		name:     name,
		job:      task,
		trigger:  intervalTrigger(interval),
		interval: interval,
	})
}

// RegisterSeconds is Register with the interval given in seconds.
func (s *Scheduler) RegisterSeconds(name string, seconds float64, task Task) error {
	if err := validation.ValidatePositiveFloat(module, "seconds", seconds); err != nil {
		return err
	}
	return s.Register(name, Seconds(seconds), task)
}

// Every fixes the interval and returns a registration function for it:
//
//	hourly := s.Every(time.Hour)
//	_ = hourly("rotate-logs", rotate)
//	_ = hourly("compact", compact)
//
// Validation happens when the returned function is called.
func (s *Scheduler) Every(interval time.Duration) func(name string, task Task) error {
	return func(name string, task Task) error {
		return s.Register(name, interval, task)
	}
}

// Reset removes every registered task.
//
// A dispatch pass already in progress finishes with the tasks it started
// with. When a callback calls Reset, tasks after it in registration order
// may still fire in that same pass; later passes see the empty registry.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	n := len(s.tasks)
	s.tasks = nil
	s.mu.Unlock()

	s.recorder().registered(0)
	s.log.Debug().Int("removed", n).Msg("registry reset")
	s.notify()
}

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Tasks returns a snapshot of all tasks in registration order.
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]TaskInfo, 0, len(s.tasks))
	for _, e := range s.tasks {
		infos = append(infos, e.info())
	}
	return infos
}

// NextDue returns the earliest due time across all tasks. It reports false
// when no task has a future activation.
func (s *Scheduler) NextDue() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextDueLocked()
}

func (s *Scheduler) nextDueLocked() (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, e := range s.tasks {
		due := e.nextDue()
		if due.IsZero() {
			continue
		}
		if !found || due.Before(earliest) {
			earliest = due
			found = true
		}
	}
	return earliest, found
}

func (s *Scheduler) add(e *entry) error {
	s.mu.Lock()
	if len(s.tasks) >= s.maxTasks {
		s.mu.Unlock()
		return cerrors.NewOperationError(module, "Register", cerrors.ErrCapacityExceeded).
			WithContext(fmt.Sprintf("maximum number of tasks (%d) reached", s.maxTasks))
	}

	now := s.clock.Now()
	e.anchor = now
	e.created = now
	s.tasks = append(s.tasks, e)
	n := len(s.tasks)
	s.mu.Unlock()

	s.recorder().registered(n)
	s.log.Debug().
		Str("task", e.name).
		Dur("interval", e.interval).
		Str("expr", e.expr).
		Msg("task registered")
	s.notify()
	return nil
}

// notify wakes a sleeping driver loop so it recomputes its deadline.
func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func validateTask(name string, task Task) error {
	if err := validation.ValidateNotEmpty(module, "name", name); err != nil {
		return err
	}
	if err := validation.ValidateNotNil(module, "task", task); err != nil {
		return err
	}
	if fn, ok := task.(TaskFunc); ok && fn == nil {
		return cerrors.NewValidationError(module, "task", nil, "cannot be nil").
			WithHint("provide a non-nil TaskFunc")
	}
	return nil
}
