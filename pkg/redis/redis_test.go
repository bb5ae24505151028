package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealfunnel/pkg/config"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := New(&config.Config{Redis: config.RedisConfig{
		Enabled: true,
		Host:    mr.Host(),
		Port:    mr.Port(),
	}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, "test"), mr
}

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	client, _ := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	cache := NewCache(client, "test")
	ctx := context.Background()

	var result []string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(ctx, "key", []string{"a"}, 0))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_RoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, StatsKey("2024-01-01"), []string{"Все сделки"}, 0))
	assert.True(t, mr.Exists("test:cache:stats:2024-01-01"))
	assert.Zero(t, mr.TTL("test:cache:stats:2024-01-01"), "ttl 0 keeps the key")

	var got []string
	found, err := cache.Get(ctx, StatsKey("2024-01-01"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"Все сделки"}, got)

	require.NoError(t, cache.Delete(ctx, StatsKey("2024-01-01")))
	found, err = cache.Get(ctx, StatsKey("2024-01-01"), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_CorruptValue(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("test:cache:stats:2024-01-02", "{not json"))

	var got []string
	found, err := cache.Get(context.Background(), StatsKey("2024-01-02"), &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestStatsKey(t *testing.T) {
	assert.Equal(t, "stats:2024-03-08", StatsKey("2024-03-08"))
}
