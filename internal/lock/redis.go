package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/interview-engine/internal/logging"
)

// ErrLeaseLost is returned when the lease could not be taken before ctx ended.
var ErrLeaseLost = errors.New("lock: lease not acquired")

const (
	DefaultLeaseTTL     = 10 * time.Second
	DefaultPollInterval = 25 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lease shared by every process pointing at the same server. A
// holder that dies frees the key once the TTL passes.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	poll   time.Duration
	logger *slog.Logger
}

// NewRedis returns a lease lock. Zero ttl or poll fall back to defaults.
func NewRedis(rdb redis.UniversalClient, prefix string, ttl, poll time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if prefix == "" {
		prefix = "lock"
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl, poll: poll, logger: slog.Default()}
}

// WithLogger sets the logger used for release failures when the acquiring
// context carries none.
func (r *Redis) WithLogger(logger *slog.Logger) *Redis {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Acquire polls SET NX until it wins the key or ctx is done.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	token, err := newLeaseToken()
	if err != nil {
		return nil, err
	}
	full := r.prefix + ":" + key

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()
	for {
		ok, err := r.rdb.SetNX(ctx, full, token, r.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("lock: acquire %s: %w", key, err)
		}
		if ok {
			return func() {
				// A fresh context so release still runs after the caller's ctx ends.
				releaseCtx, cancel := context.WithTimeout(context.Background(), r.ttl)
				defer cancel()
				deleted, err := releaseScript.Run(releaseCtx, r.rdb, []string{full}, token).Int()
				logger := logging.FromContext(ctx)
				if logger == nil {
					logger = r.logger
				}
				switch {
				case err != nil:
					logger.Error("failed to release lease", "key", full, "error", err)
				case deleted == 0:
					logger.Warn("lease expired before release", "key", full, "ttl", r.ttl)
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLeaseLost, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func newLeaseToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("lock: token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
