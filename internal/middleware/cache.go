package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur-trivia/internal/config"
)

// cachedResponse is what a cache entry holds.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// headers that belong to a single exchange and are never replayed
var volatileHeaders = []string{"X-Cache", echo.HeaderSetCookie, echo.HeaderXRequestID, echo.HeaderContentLength}

func decodeCached(bs []byte) (cachedResponse, bool) {
	var r cachedResponse
	if err := json.Unmarshal(bs, &r); err != nil || r.Status == 0 {
		return cachedResponse{}, false
	}
	return r, true
}

// teeWriter keeps a copy of the first max bytes written to the client.
type teeWriter struct {
	http.ResponseWriter
	status   int
	max      int
	copied   bytes.Buffer
	overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.max > 0 && w.copied.Len()+len(b) > w.max {
			w.overflow = true
			w.copied.Reset()
		} else {
			w.copied.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

type responseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
	ttl time.Duration
	log *logrus.Entry
}

func (rc responseCache) key(c echo.Context) string {
	r := c.Request()
	var id string
	switch strings.ToLower(rc.cfg.KeyStrategy) {
	case "route":
		id = c.Path()
	case "method_route":
		id = r.Method + " " + c.Path()
	case "method_route_query":
		id = r.Method + " " + c.Path() + "?" + r.URL.RawQuery
	default: // route_query
		id = r.URL.Path + "?" + r.URL.RawQuery
	}
	sum := sha256.Sum256([]byte(id))
	return rc.cfg.Prefix + ":" + hex.EncodeToString(sum[:16])
}

// replay writes a stored response and reports whether there was one.
func (rc responseCache) replay(c echo.Context, key string) bool {
	bs, err := rc.rdb.Get(c.Request().Context(), key).Bytes()
	if err != nil {
		if err != redis.Nil {
			rc.log.WithError(err).Warn("lookup failed")
		}
		return false
	}
	cached, ok := decodeCached(bs)
	if !ok {
		return false
	}
	h := c.Response().Header()
	for k, vs := range cached.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(cached.Status)
	_, _ = c.Response().Write(cached.Body)
	return true
}

func (rc responseCache) store(key string, w *teeWriter, header http.Header) {
	if w.status != http.StatusOK || w.overflow {
		return
	}
	header = header.Clone()
	for _, h := range volatileHeaders {
		header.Del(h)
	}
	bs, err := json.Marshal(cachedResponse{Status: w.status, Header: header, Body: w.copied.Bytes()})
	if err != nil {
		return
	}
	// the request context may already be done once the client has its answer
	if err := rc.rdb.Set(context.Background(), key, bs, rc.ttl).Err(); err != nil {
		rc.log.WithError(err).Warn("store failed")
	}
}

func (rc responseCache) purge(c echo.Context) {
	n, err := PurgeCache(c.Request().Context(), rc.rdb, rc.cfg.Prefix)
	if err != nil {
		rc.log.WithError(err).Warn("purge failed")
		return
	}
	if n > 0 {
		rc.log.WithField("keys", n).Debug("purged after write")
	}
}

// NewRedisCache answers repeated requests for the configured methods from
// Redis, replaying status, headers and body.  When cfg.InvalidateOnWrite is
// set, a successful request with any other method purges every entry under
// cfg.Prefix before its response goes back.  Without Redis, or with caching
// disabled, the middleware passes requests straight through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	rc := responseCache{cfg: cfg, rdb: rdb, ttl: cfg.TTL, log: logrus.WithField("component", "cache")}
	if rc.ttl <= 0 {
		rc.ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				err := next(c)
				if err == nil && cfg.InvalidateOnWrite && c.Response().Status < http.StatusBadRequest {
					rc.purge(c)
				}
				return err
			}

			key := rc.key(c)
			if rc.replay(c, key) {
				return nil
			}
			w := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, max: cfg.MaxBodyBytes}
			c.Response().Writer = w
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			rc.store(key, w, c.Response().Header())
			return nil
		}
	}
}

// PurgeCache deletes every key under prefix and reports how many went.
func PurgeCache(ctx context.Context, rdb *redis.Client, prefix string) (int, error) {
	iter := rdb.Scan(ctx, 0, prefix+":*", 200).Iterator()
	var batch []string
	total := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := rdb.Del(ctx, batch...).Err(); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}
	for iter.Next(ctx) {
		if batch = append(batch, iter.Val()); len(batch) == 200 {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return total, err
	}
	return total, flush()
}
