package heartbeat

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"

	cerrors "github.com/vnykmshr/cadence/pkg/common/errors"
	"github.com/vnykmshr/cadence/pkg/common/validation"
	"github.com/vnykmshr/cadence/pkg/scheduling/scheduler"
)

const module = "heartbeat"

// Config holds heartbeat configuration.
type Config struct {
	// Redis is the client used to publish beats.
	Redis redis.Cmdable

	// Key is the liveness key. Per-instance beat counts are kept in Key+":beats".
	Key string

	// TTL is how long the liveness key survives without a new beat.
	// It should exceed the interval the job is scheduled at.
	TTL time.Duration

	// InstanceID identifies this process (default: hostname-pid-random).
	InstanceID string

	// Timeout bounds each Redis round trip (default: 1s).
	Timeout time.Duration

	// Clock stamps each beat (default: the real clock).
	Clock clock.Clock
}

// Beat is the last liveness record written under Key.
type Beat struct {
	InstanceID string
	At         time.Time
}

// Heartbeat publishes a liveness record to Redis each time it runs.
// It implements scheduler.Task.
type Heartbeat struct {
	redis    redis.Cmdable
	key      string
	beatsKey string
	ttl      time.Duration
	instance string
	timeout  time.Duration
	clock    clock.Clock
}

var _ scheduler.Task = (*Heartbeat)(nil)

// New validates cfg and returns a heartbeat job.
func New(cfg Config) (*Heartbeat, error) {
	if err := validation.ValidateNotNil(module, "redis", cfg.Redis); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty(module, "key", cfg.Key); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration(module, "ttl", cfg.TTL); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegativeDuration(module, "timeout", cfg.Timeout); err != nil {
		return nil, err
	}

	h := &Heartbeat{
		redis:    cfg.Redis,
		key:      cfg.Key,
		beatsKey: cfg.Key + ":beats",
		ttl:      cfg.TTL,
		instance: cfg.InstanceID,
		timeout:  cfg.Timeout,
		clock:    cfg.Clock,
	}
	if h.instance == "" {
		h.instance = generateInstanceID()
	}
	if h.timeout == 0 {
		h.timeout = time.Second
	}
	if h.clock == nil {
		h.clock = clock.New()
	}
	return h, nil
}

// InstanceID returns the identifier written with each beat.
func (h *Heartbeat) InstanceID() string {
	return h.instance
}

// Execute writes one beat: the liveness key is refreshed with this instance
// and the current time, and the instance's beat counter is incremented.
func (h *Heartbeat) Execute(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	value := fmt.Sprintf("%s %d", h.instance, h.clock.Now().UnixNano())

	pipe := h.redis.Pipeline()
	pipe.Set(ctx, h.key, value, h.ttl)
	pipe.HIncrBy(ctx, h.beatsKey, h.instance, 1)
	pipe.Expire(ctx, h.beatsKey, h.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return cerrors.NewOperationError(module, "Execute", err).
			WithContext(fmt.Sprintf("key %q", h.key))
	}
	return nil
}

// Last returns the most recent beat. It returns redis.Nil wrapped in an
// OperationError when the key has expired or was never written.
func (h *Heartbeat) Last(ctx context.Context) (Beat, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	raw, err := h.redis.Get(ctx, h.key).Result()
	if err != nil {
		return Beat{}, cerrors.NewOperationError(module, "Last", err)
	}
	return parseBeat(raw)
}

// Counts returns the number of beats recorded per instance.
func (h *Heartbeat) Counts(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	raw, err := h.redis.HGetAll(ctx, h.beatsKey).Result()
	if err != nil {
		return nil, cerrors.NewOperationError(module, "Counts", err)
	}

	counts := make(map[string]int64, len(raw))
	for instance, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, cerrors.NewOperationError(module, "Counts", err).
				WithContext(fmt.Sprintf("instance %q", instance))
		}
		counts[instance] = n
	}
	return counts, nil
}

func parseBeat(raw string) (Beat, error) {
	i := strings.LastIndexByte(raw, ' ')
	if i <= 0 {
		return Beat{}, cerrors.NewOperationError(module, "Last",
			fmt.Errorf("malformed beat %q", raw))
	}
	nanos, err := strconv.ParseInt(raw[i+1:], 10, 64)
	if err != nil {
		return Beat{}, cerrors.NewOperationError(module, "Last", err)
	}
	return Beat{InstanceID: raw[:i], At: time.Unix(0, nanos)}, nil
}

// generateInstanceID creates a unique identifier for this process.
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	randomBytes := make([]byte, 4)
	_, _ = rand.Read(randomBytes)
	return fmt.Sprintf("%s-%d-%x", hostname, os.Getpid(), randomBytes)
}
