// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"warbler/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Cache is a best-effort Redis cache. A nil *Cache, or one built over a nil
// client, behaves as a permanently empty cache.
type Cache struct {
	client  *redis.Client
	metrics *observability.Metrics
	log     *slog.Logger
}

// New wraps an existing client.
func New(client *redis.Client, metrics *observability.Metrics, log *slog.Logger) *Cache {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Cache{client: client, metrics: metrics, log: log}
}

// Connect dials addr (host:port or redis:// URL). When addr is empty or
// Redis is unreachable it returns a disabled cache rather than an error.
func Connect(addr string, metrics *observability.Metrics, log *slog.Logger) *Cache {
	c := New(nil, metrics, log)
	if strings.TrimSpace(addr) == "" {
		c.log.Info("Redis not configured, continuing without cache")
		return c
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			c.log.Warn("Redis connection warning: invalid REDIS_URL (continuing without cache)",
				slog.String("error", err.Error()))
			return c
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		c.log.Warn("Redis connection warning (continuing without cache)", slog.String("error", err.Error()))
		_ = client.Close()
		return c
	}

	c.log.Info("Redis connected successfully")
	c.client = client
	return c
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Client returns the underlying client, which may be nil.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Close releases the client.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Invalidate deletes keys, logging rather than returning failures.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys),
			slog.String("error", err.Error()))
	}
}

func isMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

func wrap(op string, err error) error {
	return fmt.Errorf("cache %s: %w", op, err)
}
