package config

import "time"

// RateLimitConfig configures the Redis token bucket.  A bucket holds up to
// Capacity tokens and regains RefillTokens every RefillInterval.  Buckets
// are keyed by client IP, route or both since neither application knows
// its users.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string // ip, route or ip_route
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
    e := env("RATE_LIMIT_")
    return RateLimitConfig{
        Enabled:        e.flag("ENABLED", true),
        Capacity:       e.int("CAPACITY", 60),
        RefillTokens:   e.int("REFILL_TOKENS", 1),
        RefillInterval: e.dur("REFILL_INTERVAL", time.Second),
        TTL:            e.dur("TTL", 10*time.Minute),
        KeyStrategy:    e.str("KEY_STRATEGY", "ip_route"),
        Prefix:         e.str("PREFIX", "rl"),
        Debug:          e.flag("DEBUG", false),
    }.normalize()
}

// normalize clamps values that would make the bucket unusable.  An idle
// bucket must outlive the time it takes to refill.
func (c RateLimitConfig) normalize() RateLimitConfig {
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    c.TTL = max(c.TTL, 5*c.RefillInterval)
    return c
}
