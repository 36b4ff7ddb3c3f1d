package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"warbler/internal/observability"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, *observability.Metrics) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return New(rdb, metrics, nil), mr, metrics
}

func TestAside_MissThenHit(t *testing.T) {
	c, mr, metrics := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *profile) func() error {
		return func() error {
			calls++
			*dest = profile{ID: 7, Username: "alice"}
			return nil
		}
	}

	var first profile
	require.NoError(t, c.Aside(ctx, UserKey(7), &first, UserTTL, fetch(&first)))
	assert.Equal(t, "alice", first.Username)
	assert.True(t, mr.Exists("user:7"))

	var second profile
	require.NoError(t, c.Aside(ctx, UserKey(7), &second, UserTTL, fetch(&second)))
	assert.Equal(t, "alice", second.Username)
	assert.Equal(t, 1, calls, "second read is served from redis")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheResults.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheResults.WithLabelValues("hit")))
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	c, mr, _ := newTestCache(t)
	boom := errors.New("not found")

	var dest profile
	err := c.Aside(context.Background(), UserKey(9), &dest, UserTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:9"))
}

func TestAside_TTL(t *testing.T) {
	c, mr, _ := newTestCache(t)

	var dest profile
	require.NoError(t, c.Aside(context.Background(), CountsKey(3), &dest, CountsTTL, func() error { return nil }))
	assert.Equal(t, CountsTTL, mr.TTL("user:3:counts"))

	mr.FastForward(CountsTTL + time.Second)
	assert.False(t, mr.Exists("user:3:counts"))
}

func TestAside_CorruptEntryFallsThrough(t *testing.T) {
	c, mr, metrics := newTestCache(t)
	require.NoError(t, mr.Set("user:5", "{not json"))

	var dest profile
	err := c.Aside(context.Background(), UserKey(5), &dest, UserTTL, func() error {
		dest = profile{ID: 5, Username: "bob"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", dest.Username)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheResults.WithLabelValues("error")))
}

func TestInvalidateUser(t *testing.T) {
	c, mr, _ := newTestCache(t)
	require.NoError(t, mr.Set("user:1", "{}"))
	require.NoError(t, mr.Set("user:1:counts", "{}"))
	require.NoError(t, mr.Set("user:2:counts", "{}"))

	c.InvalidateUser(context.Background(), 1)
	assert.False(t, mr.Exists("user:1"))
	assert.False(t, mr.Exists("user:1:counts"))
	assert.True(t, mr.Exists("user:2:counts"))

	c.InvalidateCounts(context.Background(), 2)
	assert.False(t, mr.Exists("user:2:counts"))
}

func TestDisabledCache(t *testing.T) {
	t.Parallel()
	for name, c := range map[string]*Cache{"nil": nil, "no client": New(nil, nil, nil)} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, c.Enabled())
			assert.Nil(t, c.Client())
			assert.NoError(t, c.Close())

			calls := 0
			var dest profile
			for i := 0; i < 2; i++ {
				require.NoError(t, c.Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error {
					calls++
					return nil
				}))
			}
			assert.Equal(t, 2, calls)
			assert.NotPanics(t, func() { c.InvalidateUser(context.Background(), 1) })
		})
	}
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := Connect(mr.Addr(), nil, nil)
	defer c.Close()
	assert.True(t, c.Enabled())

	url := Connect("redis://"+mr.Addr()+"/0", nil, nil)
	defer url.Close()
	assert.True(t, url.Enabled())

	assert.False(t, Connect("", nil, nil).Enabled())
	assert.False(t, Connect("redis://%zz", nil, nil).Enabled())
}
