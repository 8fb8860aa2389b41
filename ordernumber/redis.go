package ordernumber

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "dserve:order-seq:"
	redisTTL       = 48 * time.Hour
)

// raiseScript sets the key to ARGV[1] only when that is larger than the
// current value.
var raiseScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
if cur < tonumber(ARGV[1]) then
	redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
end
return cur
`)

// RedisCounter keeps one INCR key per day.
type RedisCounter struct {
	client redis.UniversalClient
}

func NewRedisCounter(client redis.UniversalClient) *RedisCounter {
	return &RedisCounter{client: client}
}

// DialRedis parses a redis:// URL, connects and pings.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func key(day string) string {
	return redisKeyPrefix + day
}

func (c *RedisCounter) IncrementCounter(ctx context.Context, day string) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key(day))
	pipe.Expire(ctx, key(day), redisTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incr %s: %w", key(day), err)
	}
	return incr.Val(), nil
}

func (c *RedisCounter) RaiseCounter(ctx context.Context, day string, atLeast int64) error {
	err := raiseScript.Run(ctx, c.client, []string{key(day)}, atLeast, int64(redisTTL/time.Second)).Err()
	if err != nil {
		return fmt.Errorf("raise %s: %w", key(day), err)
	}
	return nil
}

func (c *RedisCounter) CurrentCounter(ctx context.Context, day string) (int64, error) {
	v, err := c.client.Get(ctx, key(day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key(day), err)
	}
	return v, nil
}
