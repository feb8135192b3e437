package config

// Redis backs the response cache and the rate limiter of both applications.
// Startup never depends on it: when the server cannot be reached the
// constructor returns nil and the middleware degrade to pass-through.

import (
    "context"
    "crypto/tls"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"
)

// NewRedisClient instantiates a Redis client from the environment.
//   REDIS_URL – full redis:// or rediss:// URL (takes precedence)
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
// REDIS_DISABLED=true skips the connection attempt entirely.
func NewRedisClient() *redis.Client {
    if env("REDIS_").flag("DISABLED", false) {
        return nil
    }
    opts, err := redisOptions()
    if err != nil {
        logrus.WithError(err).Warn("redis: invalid configuration, cache and rate limit disabled")
        return nil
    }
    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        logrus.WithError(err).WithField("addr", opts.Addr).Warn("redis: unreachable, cache and rate limit disabled")
        _ = client.Close()
        return nil
    }
    return client
}

func redisOptions() (*redis.Options, error) {
    if url := os.Getenv("REDIS_URL"); url != "" {
        return redis.ParseURL(url)
    }
    addr := env("REDIS_").str("ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       env("REDIS_").int("DB", 0),
    }
    if env("REDIS_").flag("TLS", false) {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts, nil
}
