package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
scheduler:
  name: edge
  max_tasks: 50
  isolate_failures: true
  run_for: 1h
  timezone: UTC
log:
  level: debug
  format: json
metrics:
  enabled: true
  addr: 127.0.0.1:9191
redis:
  addr: localhost:6379
  db: 2
tasks:
  - name: alive
    kind: heartbeat
    every: 10s
    key: edge:alive
  - name: nightly
    kind: Log
    cron: "0 3 * * *"
    message: nightly checkpoint
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "cadence.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scheduler.Name != "edge" || cfg.Scheduler.MaxTasks != 50 || !cfg.Scheduler.IsolateFailures {
		t.Errorf("scheduler = %+v", cfg.Scheduler)
	}
	if d, _ := cfg.Scheduler.RunForDuration(); d != time.Hour {
		t.Errorf("run_for = %v, want 1h", d)
	}
	if loc, _ := cfg.Scheduler.LoadLocation(); loc != time.UTC {
		t.Errorf("location = %v, want UTC", loc)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("redis.db = %d, want 2", cfg.Redis.DB)
	}
	if len(cfg.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(cfg.Tasks))
	}

	alive := cfg.Tasks[0]
	if alive.Interval() != 10*time.Second {
		t.Errorf("interval = %v, want 10s", alive.Interval())
	}
	if alive.HeartbeatTTL() != 30*time.Second {
		t.Errorf("default ttl = %v, want 30s", alive.HeartbeatTTL())
	}

	nightly := cfg.Tasks[1]
	if nightly.Kind != KindLog {
		t.Errorf("kind = %q, want normalized %q", nightly.Kind, KindLog)
	}
	if nightly.Interval() != 0 {
		t.Errorf("cron task interval = %v, want 0", nightly.Interval())
	}
}

func TestLoad_JSON(t *testing.T) {
	cfg, err := Load(writeFile(t, "cadence.json", `{"tasks":[{"name":"t","kind":"log","every":"1s"}]}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tasks[0].Interval() != time.Second {
		t.Errorf("interval = %v", cfg.Tasks[0].Interval())
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scheduler.Name != "heartbeatd" {
		t.Errorf("name = %q", cfg.Scheduler.Name)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("metrics.addr = %q", cfg.Metrics.Addr)
	}
	if d, _ := cfg.Scheduler.RunForDuration(); d != 0 {
		t.Errorf("run_for = %v, want unbounded", d)
	}
	if loc, _ := cfg.Scheduler.LoadLocation(); loc != time.Local {
		t.Errorf("location = %v, want Local", loc)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown field", "schedular: {}", "unknown field"},
		{"bad yaml", "tasks: [", "yaml unmarshal"},
		{"negative run_for", "scheduler: {run_for: -1s}", "scheduler.run_for"},
		{"bad run_for", "scheduler: {run_for: soon}", "invalid duration"},
		{"bad timezone", "scheduler: {timezone: Mars/Olympus}", "scheduler.timezone"},
		{"negative max_tasks", "scheduler: {max_tasks: -1}", "max_tasks"},
		{"bad log format", "log: {format: xml}", "log.format"},
		{"missing name", "tasks: [{kind: log, every: 1s}]", "tasks[0].name"},
		{"both triggers", "tasks: [{name: t, kind: log, every: 1s, cron: '* * * * *'}]", "exactly one"},
		{"no trigger", "tasks: [{name: t, kind: log}]", "exactly one"},
		{"zero interval", "tasks: [{name: t, kind: log, every: 0s}]", "must be > 0"},
		{"bad cron", "tasks: [{name: t, kind: log, cron: 'every tuesday'}]", "tasks[0].cron"},
		{"cron out of range", "tasks: [{name: t, kind: log, cron: '61 * * * *'}]", "tasks[0].cron"},
		{"unknown kind", "tasks: [{name: t, kind: email, every: 1s}]", "unknown kind"},
		{"heartbeat without redis", "tasks: [{name: t, kind: heartbeat, every: 1s, key: k}]", "redis.addr"},
		{"heartbeat without key", "redis: {addr: x}\ntasks: [{name: t, kind: heartbeat, every: 1s}]", "tasks[0].key"},
		{"cron heartbeat without ttl", "redis: {addr: x}\ntasks: [{name: t, kind: heartbeat, cron: '@hourly', key: k}]", "tasks[0].ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("cfg.yaml", []byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParse_TrailingJSON(t *testing.T) {
	if _, err := Parse("cfg.json", []byte(`{} {}`)); err == nil {
		t.Error("expected trailing data error")
	}
}

func TestParseDurationField(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"1500ms", 1500 * time.Millisecond, false},
		{" 2m ", 2 * time.Minute, false},
		{"-1s", 0, true},
		{"10", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDurationField("field", tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDurationField(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDurationField(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
