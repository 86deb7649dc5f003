// Package cache keeps public share-link reads in Redis. Entries are keyed by
// (entity, id, params) and dropped for a whole weaver when the weaver's
// catalog changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL matches how long a public view may show stale data.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "query:"

var cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_query_cache_requests_total",
	Help: "Public query cache lookups by entity and result (hit, miss, error).",
}, []string{"entity", "result"})

// Key builds "query:{entity}:{id}:{params}".
func Key(entity, id, params string) string {
	return keyPrefix + entity + ":" + id + ":" + params
}

// QueryCache stores JSON-encoded query results with a fixed TTL.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewQueryCache creates a cache; a non-positive ttl means DefaultTTL.
func NewQueryCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryCache{client: client, ttl: ttl, logger: logger}
}

// Get decodes the entry at key into dst and reports whether it was found.
func (c *QueryCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Set stores v at key with the cache TTL.
func (c *QueryCache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// InvalidateOwner deletes every entry whose id is owner and returns how
// many keys were removed.
func (c *QueryCache) InvalidateOwner(ctx context.Context, owner string) (int, error) {
	pattern := keyPrefix + "*:" + escapeGlob(owner) + ":*"

	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	c.logger.DebugContext(ctx, "query cache invalidated",
		slog.String("weaver_id", owner),
		slog.Int("keys", removed),
	)
	return removed, nil
}

// Ping checks the Redis connection.
func (c *QueryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
