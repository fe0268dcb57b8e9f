package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces limiter keys in a shared redis.
const KeyPrefix = "ratelimit:"

// hitScript counts a hit and starts the window on the first one. The key expires with
// its window, which replaces the memory store's sweeper. Hits over the limit are not
// counted so the stored value never exceeds max.
var hitScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local max = tonumber(ARGV[1])
if count == 0 then
  redis.call('SET', KEYS[1], 1, 'PX', ARGV[2])
  return {1, 1, tonumber(ARGV[2])}
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
  ttl = tonumber(ARGV[2])
end
if count >= max then
  return {0, count, ttl}
end
count = redis.call('INCR', KEYS[1])
return {1, count, ttl}
`)

// RedisStore shares counters between server instances.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// DialRedis connects to the redis at url and checks the connection.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Hit(ctx context.Context, key string, max int, window time.Duration) (Result, error) {
	vals, err := hitScript.Run(ctx, s.client, []string{KeyPrefix + key}, max, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("run hit script: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("unexpected hit script reply %v", vals)
	}
	return Result{
		Allowed: vals[0] == 1,
		Count:   int(vals[1]),
		ResetAt: s.now().Add(time.Duration(vals[2]) * time.Millisecond),
	}, nil
}
