package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huynnh/calsync/internal/calendar/application"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a snapshot stays in Redis.
const DefaultTTL = 24 * time.Hour

// RedisCache stores the last snapshot as JSON under
// calsync:{namespace}:snapshot.
type RedisCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

var _ application.SnapshotCache = (*RedisCache)(nil)

// NewRedisCache creates a Redis snapshot cache. A non-positive ttl uses
// DefaultTTL.
func NewRedisCache(client *redis.Client, namespace string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "default"
	}
	return &RedisCache{client: client, namespace: namespace, ttl: ttl}
}

// Connect parses url, opens a client and pings it.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (c *RedisCache) key() string {
	return fmt.Sprintf("calsync:%s:snapshot", c.namespace)
}

// Save overwrites the stored snapshot.
func (c *RedisCache) Save(ctx context.Context, snapshot application.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return c.client.Set(ctx, c.key(), data, c.ttl).Err()
}

// Load returns the stored snapshot or application.ErrNoSnapshot.
func (c *RedisCache) Load(ctx context.Context) (*application.Snapshot, error) {
	data, err := c.client.Get(ctx, c.key()).Bytes()
	if err == redis.Nil {
		return nil, application.ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	var snapshot application.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// Clear removes the stored snapshot.
func (c *RedisCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, c.key()).Err()
}
