package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur-trivia/internal/config"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:           true,
		Methods:           map[string]bool{http.MethodGet: true},
		TTL:               time.Minute,
		KeyStrategy:       "route_query",
		Prefix:            "cache",
		MaxBodyBytes:      64,
		InvalidateOnWrite: true,
	}
}

func TestCacheReplaysResponse(t *testing.T) {
	_, rdb := newTestRedis(t)
	calls := 0
	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), rdb))
	e.GET("/items", func(c echo.Context) error {
		calls++
		c.Response().Header().Set("X-Custom", "yes")
		return c.String(http.StatusOK, "items")
	})

	first := run(e, http.MethodGet, "/items?page=1", nil)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := run(e, http.MethodGet, "/items?page=1", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "items", second.Body.String())
	assert.Equal(t, "yes", second.Header().Get("X-Custom"))
	assert.Equal(t, 1, calls)

	other := run(e, http.MethodGet, "/items?page=2", nil)
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestCacheSkipsErrorsAndLargeBodies(t *testing.T) {
	_, rdb := newTestRedis(t)
	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), rdb))
	e.GET("/missing", func(c echo.Context) error { return c.String(http.StatusNotFound, "nope") })
	e.GET("/big", func(c echo.Context) error { return c.String(http.StatusOK, string(make([]byte, 100))) })

	for _, path := range []string{"/missing", "/big"} {
		run(e, http.MethodGet, path, nil)
		rec := run(e, http.MethodGet, path, nil)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), path)
	}
}

func TestWritePurgesCache(t *testing.T) {
	mr, rdb := newTestRedis(t)
	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), rdb))
	e.GET("/items", func(c echo.Context) error { return c.String(http.StatusOK, "items") })
	e.POST("/items", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	e.DELETE("/items", func(c echo.Context) error { return echo.ErrNotFound })

	run(e, http.MethodGet, "/items", nil)
	require.Len(t, mr.Keys(), 1)

	run(e, http.MethodDelete, "/items", nil)
	assert.Len(t, mr.Keys(), 1, "failed writes keep the cache")

	run(e, http.MethodPost, "/items", nil)
	assert.Empty(t, mr.Keys())
}

func TestPurgeCacheOnlyTouchesPrefix(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("cache:a", "1"))
	require.NoError(t, mr.Set("cache:b", "1"))
	require.NoError(t, mr.Set("rl:ip:1", "1"))

	n, err := PurgeCache(context.Background(), rdb, "cache")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"rl:ip:1"}, mr.Keys())
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), nil))
	e.GET("/items", func(c echo.Context) error { return c.String(http.StatusOK, "items") })
	rec := run(e, http.MethodGet, "/items", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCacheDropsVolatileHeaders(t *testing.T) {
	mr, rdb := newTestRedis(t)
	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), rdb))
	e.GET("/items", func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderXRequestID, "req-1")
		c.SetCookie(&http.Cookie{Name: "s", Value: "v"})
		return c.JSON(http.StatusOK, map[string]int{"a": 1})
	})
	run(e, http.MethodGet, "/items", nil)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	raw, err := mr.Get(keys[0])
	require.NoError(t, err)
	cached, ok := decodeCached([]byte(raw))
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, cached.Status)
	assert.JSONEq(t, `{"a":1}`, string(cached.Body))
	assert.Empty(t, cached.Header.Get(echo.HeaderXRequestID))
	assert.Empty(t, cached.Header.Get(echo.HeaderSetCookie))
	assert.Empty(t, cached.Header.Get("X-Cache"))

	_, ok = decodeCached([]byte("garbage"))
	assert.False(t, ok)
}
