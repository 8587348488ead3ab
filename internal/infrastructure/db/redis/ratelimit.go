package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// Atomic INCR that starts the window on the first hit.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimiterStore is a fixed-window counter shared by every API instance.
// It satisfies echo's middleware.RateLimiterStore.
type RateLimiterStore struct {
	client  *redis.Client
	limit   int
	window  time.Duration
	timeout time.Duration
}

// NewRateLimiterStore allows limit hits per identifier in each window.
func NewRateLimiterStore(client *redis.Client, limit int, window time.Duration) *RateLimiterStore {
	return &RateLimiterStore{client: client, limit: limit, window: window, timeout: defaultTimeout}
}

// Allow records one hit for identifier and reports whether it is within budget.
func (s *RateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := incrExpireScript.Run(ctx, s.client, []string{s.key(identifier)}, s.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return n <= int64(s.limit), nil
}

func (s *RateLimiterStore) key(identifier string) string {
	return keyPrefix + identifier
}
