package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur-trivia/internal/config"
)

// takeToken refills a bucket continuously from the time it was last touched
// and then tries to take one token.
//
//	KEYS[1]  bucket hash {t = tokens, at = last touch in ms}
//	ARGV     now_ms, capacity, tokens per ms, ttl_ms
//
// It replies {1 if taken, whole tokens left, ms until one token is back}.
var takeToken = redis.NewScript(`
local now, cap, rate = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3])
local b = redis.call('HMGET', KEYS[1], 't', 'at')
local t = tonumber(b[1]) or cap
local at = tonumber(b[2]) or now
t = math.min(cap, t + math.max(0, now - at) * rate)
local taken, wait = 0, 0
if t >= 1 then
	taken = 1
	t = t - 1
else
	wait = math.ceil((1 - t) / rate)
end
redis.call('HSET', KEYS[1], 't', tostring(t), 'at', now)
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {taken, math.floor(t), wait}
`)

type bucket struct {
	rdb      *redis.Client
	capacity int
	perMilli float64
	ttl      time.Duration
}

type verdict struct {
	allowed bool
	left    int64
	wait    time.Duration
}

func newBucket(cfg config.RateLimitConfig, rdb *redis.Client) bucket {
	return bucket{
		rdb:      rdb,
		capacity: cfg.Capacity,
		perMilli: float64(cfg.RefillTokens) / float64(cfg.RefillInterval.Milliseconds()),
		ttl:      cfg.TTL,
	}
}

func (b bucket) take(ctx context.Context, key string, now time.Time) (verdict, error) {
	res, err := takeToken.Run(ctx, b.rdb, []string{key},
		now.UnixMilli(), b.capacity, b.perMilli, b.ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(res) != 3 {
		return verdict{}, fmt.Errorf("ratelimit: unexpected reply %v", res)
	}
	return verdict{
		allowed: res[0] == 1,
		left:    res[1],
		wait:    time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits requests per client IP, per route, or per both with
// a token bucket held in Redis.  A rejected request gets a 429 HTTP error
// and a Retry-After header in whole seconds.  Redis failures let the
// request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	b := newBucket(cfg, rdb)
	limit := strconv.Itoa(cfg.Capacity)
	log := logrus.WithField("component", "ratelimit")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			v, err := b.take(c.Request().Context(), key, time.Now())
			if err != nil {
				log.WithError(err).WithField("key", key).Warn("redis unavailable, request allowed")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.left, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if v.allowed {
				return next(c)
			}

			h.Set("Retry-After", strconv.Itoa(retryAfter(v.wait)))
			if cfg.Debug {
				log.WithFields(logrus.Fields{"key": key, "wait": v.wait}).Info("request throttled")
			}
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
	}
}

// retryAfter rounds up to whole seconds, never below one.
func retryAfter(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	return max(secs, 1)
}

func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		return fmt.Sprintf("%s:ip:%s", cfg.Prefix, ip)
	case "route":
		return fmt.Sprintf("%s:route:%s", cfg.Prefix, route)
	}
	return fmt.Sprintf("%s:ip:%s:route:%s", cfg.Prefix, ip, route)
}
