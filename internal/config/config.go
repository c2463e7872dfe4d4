// Package config loads the heartbeatd daemon configuration.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vnykmshr/cadence/pkg/scheduling/scheduler"
)

// Task kinds understood by the daemon.
const (
	KindHeartbeat = "heartbeat"
	KindLog       = "log"
)

type Config struct {
	Scheduler SchedulerConfig `json:"scheduler"`
	Log       LogConfig       `json:"log"`
	Metrics   MetricsConfig   `json:"metrics"`
	Redis     RedisConfig     `json:"redis"`
	Tasks     []TaskConfig    `json:"tasks"`
}

type SchedulerConfig struct {
	Name            string `json:"name"`
	MaxTasks        int    `json:"max_tasks"`
	IsolateFailures bool   `json:"isolate_failures"`
	// RunFor bounds the daemon's lifetime. Empty runs until signalled.
	RunFor   string `json:"run_for"`
	Timezone string `json:"timezone"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// TaskConfig declares one periodic task. Exactly one of Every and Cron is set.
type TaskConfig struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Every   string `json:"every"`
	Cron    string `json:"cron"`
	Key     string `json:"key"`
	TTL     string `json:"ttl"`
	Message string `json:"message"`
}

// Load reads a YAML or JSON config file, applies defaults and validates it.
// Unknown fields are rejected.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, b)
}

// Parse decodes data whose format is chosen by the extension of path.
func Parse(path string, data []byte) (*Config, error) {
	jb, format, err := coerceToJSONBytes(path, data)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s config: %w", format, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.Name == "" {
		c.Scheduler.Name = "heartbeatd"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	for i := range c.Tasks {
		c.Tasks[i].Kind = strings.ToLower(strings.TrimSpace(c.Tasks[i].Kind))
	}
}

// Validate checks cross-field constraints. It is called by Load.
func (c *Config) Validate() error {
	if c.Scheduler.MaxTasks < 0 {
		return fmt.Errorf("scheduler.max_tasks: must be >= 0")
	}
	if _, err := c.Scheduler.RunForDuration(); err != nil {
		return err
	}
	if _, err := c.Scheduler.LoadLocation(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}

	for i, t := range c.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%s.name: required", path)
		}
		hasEvery := strings.TrimSpace(t.Every) != ""
		hasCron := strings.TrimSpace(t.Cron) != ""
		if hasEvery == hasCron {
			return fmt.Errorf("%s: exactly one of every or cron is required", path)
		}
		if hasCron {
			if err := scheduler.ValidateCron(t.Cron); err != nil {
				return fmt.Errorf("%s.cron: %w", path, err)
			}
		}
		if hasEvery {
			d, err := ParseDurationField(path+".every", t.Every)
			if err != nil {
				return err
			}
			if d == 0 {
				return fmt.Errorf("%s.every: duration must be > 0", path)
			}
		}

		switch t.Kind {
		case KindLog:
		case KindHeartbeat:
			if c.Redis.Addr == "" {
				return fmt.Errorf("%s: heartbeat tasks require redis.addr", path)
			}
			if strings.TrimSpace(t.Key) == "" {
				return fmt.Errorf("%s.key: required for heartbeat tasks", path)
			}
			ttl, err := ParseDurationField(path+".ttl", t.TTL)
			if err != nil {
				return err
			}
			if ttl == 0 && hasCron {
				return fmt.Errorf("%s.ttl: required for cron heartbeat tasks", path)
			}
		default:
			return fmt.Errorf("%s.kind: unknown kind %q", path, t.Kind)
		}
	}
	return nil
}

// RunForDuration returns the configured lifetime; zero means unbounded.
func (s SchedulerConfig) RunForDuration() (time.Duration, error) {
	return ParseDurationField("scheduler.run_for", s.RunFor)
}

// LoadLocation resolves Timezone, defaulting to time.Local.
func (s SchedulerConfig) LoadLocation() (*time.Location, error) {
	if strings.TrimSpace(s.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler.timezone: %w", err)
	}
	return loc, nil
}

// Interval returns the task's fixed interval, or zero for cron tasks.
func (t TaskConfig) Interval() time.Duration {
	d, _ := ParseDurationField("every", t.Every)
	return d
}

// HeartbeatTTL returns the configured TTL, defaulting to three intervals.
func (t TaskConfig) HeartbeatTTL() time.Duration {
	d, _ := ParseDurationField("ttl", t.TTL)
	if d > 0 {
		return d
	}
	return 3 * t.Interval()
}
