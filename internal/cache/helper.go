package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	s, err := c.client.Get(ctx, key).Result()
	if isMiss(err) {
		return false, nil
	}
	if err != nil {
		return false, wrap("get", err)
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, wrap("decode", err)
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return wrap("encode", err)
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return wrap("set", err)
	}
	return nil
}

// Aside tries Redis first, on miss it calls fetch (which should populate dest),
// then stores the result in Redis with ttl. fetch must write into dest.
// Redis failures fall through to fetch; only fetch errors are returned.
func (c *Cache) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if !c.Enabled() {
		return fetch()
	}

	found, err := c.GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		c.metrics.RecordCache("error")
		c.log.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case found:
		c.metrics.RecordCache("hit")
		return nil
	default:
		c.metrics.RecordCache("miss")
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := c.SetJSON(ctx, key, dest, ttl); err != nil {
		c.log.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}
