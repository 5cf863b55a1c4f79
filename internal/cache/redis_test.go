package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larkkit/lark-cli/internal/cache"
)

func newTestRedisStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisStore(client, "test:"), mr
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	_, ok, err := s.Get(ctx, "tenant_access_token:cli_a")
	require.NoError(t, err)
	assert.False(t, ok)

	expires := time.Now().Add(2 * time.Hour).UTC().Round(time.Second)
	require.NoError(t, s.Set(ctx, "tenant_access_token:cli_a", cache.Entry{Value: "t-1", ExpiresAt: expires}))

	assert.True(t, mr.Exists("test:tenant_access_token:cli_a"))
	ttl := mr.TTL("test:tenant_access_token:cli_a")
	assert.Greater(t, ttl, time.Hour)

	got, ok, err := s.Get(ctx, "tenant_access_token:cli_a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t-1", got.Value)
	assert.True(t, got.ExpiresAt.Equal(expires))

	require.NoError(t, s.Delete(ctx, "tenant_access_token:cli_a"))
	assert.False(t, mr.Exists("test:tenant_access_token:cli_a"))
}

func TestRedisStore_ExpiresOnServer(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	require.NoError(t, s.Set(ctx, "k", cache.Entry{Value: "v", ExpiresAt: time.Now().Add(time.Minute)}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_SkipsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	require.NoError(t, s.Set(ctx, "k", cache.Entry{Value: "v", ExpiresAt: time.Now().Add(-time.Second)}))
	assert.False(t, mr.Exists("test:k"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)
	mr.Close()

	_, _, err := s.Get(ctx, "k")
	assert.Error(t, err)
}

func TestNewRedisStoreFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := cache.NewRedisStoreFromURL("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", cache.Entry{Value: "v", ExpiresAt: time.Now().Add(time.Hour)}))
	assert.True(t, mr.Exists(cache.DefaultRedisPrefix+"k"))

	_, err = cache.NewRedisStoreFromURL("not a url")
	assert.Error(t, err)
}
