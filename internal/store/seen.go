package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKeyPrefix = "jobsieve:seen:"

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// SeenCache remembers job links already ingested, so repeated scrape cycles
// skip the database round-trip for known links. It is advisory: Postgres
// still enforces uniqueness on job_link.
type SeenCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSeenCache(rdb *redis.Client, ttl time.Duration) *SeenCache {
	return &SeenCache{rdb: rdb, ttl: ttl}
}

// Seen reports whether a link was already recorded, without recording it. A
// nil cache reports every link as new.
func (c *SeenCache) Seen(ctx context.Context, link string) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, nil
	}

	n, err := c.rdb.Exists(ctx, seenKeyPrefix+link).Result()
	if err != nil {
		return false, fmt.Errorf("check link seen: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records a link. Callers mark a link only after the posting is
// persisted, so a failed insert is retried on the next cycle instead of
// being shadowed by the cache for the whole TTL. A nil cache is a no-op.
func (c *SeenCache) MarkSeen(ctx context.Context, link string) error {
	if c == nil || c.rdb == nil {
		return nil
	}

	if err := c.rdb.Set(ctx, seenKeyPrefix+link, 1, c.ttl).Err(); err != nil {
		return fmt.Errorf("mark link seen: %w", err)
	}
	return nil
}
