package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter shares counts across replicas with INCR and EXPIRE.
type RedisCounter struct {
	rdb    redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewRedisCounter(rdb redis.UniversalClient, limit int, win time.Duration) *RedisCounter {
	if win <= 0 {
		win = 24 * time.Hour
	}
	return &RedisCounter{rdb: rdb, limit: limit, window: win, prefix: "lenstalk:usage:"}
}

func (c *RedisCounter) key(scope string) string { return c.prefix + normalizeScope(scope) }

func (c *RedisCounter) CheckAndIncrement(ctx context.Context, scope string) (Status, error) {
	key := c.key(scope)
	used, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Status{}, fmt.Errorf("usage incr: %w", err)
	}
	if used == 1 {
		if err := c.rdb.Expire(ctx, key, c.window).Err(); err != nil {
			return Status{}, fmt.Errorf("usage expire: %w", err)
		}
	}
	st := Status{Used: int(used), Limit: c.limit, ResetAt: c.resetAt(ctx, key)}
	if c.limit > 0 && int(used) > c.limit {
		if err := c.rdb.Decr(ctx, key).Err(); err != nil {
			return st, fmt.Errorf("usage decr: %w", err)
		}
		st.Used = c.limit
		return st, exceeded(st)
	}
	return st, nil
}

func (c *RedisCounter) Release(ctx context.Context, scope string) error {
	key := c.key(scope)
	n, err := c.rdb.Decr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("usage decr: %w", err)
	}
	if n < 0 {
		return c.rdb.Set(ctx, key, 0, redis.KeepTTL).Err()
	}
	return nil
}

func (c *RedisCounter) Peek(ctx context.Context, scope string) (Status, error) {
	key := c.key(scope)
	used, err := c.rdb.Get(ctx, key).Int()
	if err == redis.Nil {
		return Status{Limit: c.limit}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("usage get: %w", err)
	}
	return Status{Used: used, Limit: c.limit, ResetAt: c.resetAt(ctx, key)}, nil
}

func (c *RedisCounter) resetAt(ctx context.Context, key string) time.Time {
	ttl, err := c.rdb.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl).UTC()
}
