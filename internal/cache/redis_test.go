package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, ttl), mr
}

func TestSetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "home", page{Title: "Home", Items: []string{"a", "b"}}))
	assert.True(t, mr.Exists("garud:home"))

	ttl := mr.TTL("garud:home")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.Less(t, ttl, time.Minute+12*time.Second)

	var got page
	require.NoError(t, c.Get(ctx, "home", &got))
	assert.Equal(t, page{Title: "Home", Items: []string{"a", "b"}}, got)
}

func TestGetMissAndExpiry(t *testing.T) {
	c, mr := setupTestRedis(t, time.Second)
	ctx := context.Background()

	var got page
	assert.ErrorIs(t, c.Get(ctx, "nope", &got), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "home", page{Title: "x"}))
	mr.FastForward(2 * time.Second)
	assert.ErrorIs(t, c.Get(ctx, "home", &got), ErrCacheMiss)
}

func TestGetInvalidJSON(t *testing.T) {
	c, mr := setupTestRedis(t, time.Minute)
	require.NoError(t, mr.Set("garud:home", "{not json"))

	var got page
	err := c.Get(context.Background(), "home", &got)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	c, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))

	require.NoError(t, c.Delete(ctx, "a", "b"))
	assert.False(t, mr.Exists("garud:a"))
	assert.False(t, mr.Exists("garud:b"))
	require.NoError(t, c.Delete(ctx))
	require.NoError(t, c.Ping(ctx))
}

func TestRedisDown(t *testing.T) {
	c, mr := setupTestRedis(t, time.Minute)
	mr.Close()

	var got page
	err := c.Get(context.Background(), "home", &got)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
