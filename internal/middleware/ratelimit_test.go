package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur-trivia/internal/config"
)

func TestTokenBucketRejectsWhenEmpty(t *testing.T) {
	_, rdb := newTestRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       3,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/a", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/b", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := run(e, http.MethodGet, "/a", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := run(e, http.MethodGet, "/a", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// ip_route keys each route separately
	assert.Equal(t, http.StatusOK, run(e, http.MethodGet, "/b", nil).Code)
}

func TestTokenBucketFailsOpen(t *testing.T) {
	mr, rdb := newTestRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, Prefix: "rl"}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	mr.Close()
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, run(e, http.MethodGet, "/", nil).Code)
	}
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	e.GET("/questions/:id", func(c echo.Context) error {
		ip := c.RealIP()
		for strategy, want := range map[string]string{
			"ip":       "rl:ip:" + ip,
			"route":    "rl:route:GET /questions/:id",
			"ip_route": "rl:ip:" + ip + ":route:GET /questions/:id",
		} {
			assert.Equal(t, want, rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c), strategy)
		}
		return nil
	})
	run(e, http.MethodGet, "/questions/7", nil)
}

func TestBucketRefillsOverTime(t *testing.T) {
	_, rdb := newTestRedis(t)
	b := newBucket(config.RateLimitConfig{Capacity: 2, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute}, rdb)
	ctx := context.Background()
	start := time.UnixMilli(1_700_000_000_000)

	for i := 0; i < 2; i++ {
		v, err := b.take(ctx, "rl:k", start)
		require.NoError(t, err)
		assert.True(t, v.allowed)
	}
	v, err := b.take(ctx, "rl:k", start.Add(250*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, v.allowed)
	assert.Equal(t, 750*time.Millisecond, v.wait)

	v, err = b.take(ctx, "rl:k", start.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, v.allowed)
	assert.EqualValues(t, 0, v.left)

	// a long idle period never overfills the bucket
	v, err = b.take(ctx, "rl:k", start.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, v.left)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 1, retryAfter(0))
	assert.Equal(t, 1, retryAfter(300*time.Millisecond))
	assert.Equal(t, 2, retryAfter(1001*time.Millisecond))
	assert.Equal(t, 3600, retryAfter(time.Hour))
}
