package config

import (
    "strings"
    "time"
)

// CacheConfig drives the Redis response cache in front of the Trivia API.
// Successful responses to Methods are stored for TTL under Prefix.  With
// InvalidateOnWrite, any successful request using another method purges
// the whole prefix, so listings never outlive the mutation that changed
// them.
type CacheConfig struct {
    Enabled           bool
    Methods           map[string]bool
    TTL               time.Duration
    KeyStrategy       string // route, method_route, method_route_query or route_query
    Prefix            string
    MaxBodyBytes      int
    InvalidateOnWrite bool
}

// LoadCacheConfig reads the CACHE_* variables.
func LoadCacheConfig() CacheConfig {
    e := env("CACHE_")
    methods := map[string]bool{}
    for _, m := range e.list("METHODS", "GET") {
        methods[strings.ToUpper(m)] = true
    }
    return CacheConfig{
        Enabled:           e.flag("ENABLED", true),
        Methods:           methods,
        TTL:               e.dur("TTL", 30*time.Second),
        KeyStrategy:       e.str("KEY_STRATEGY", "route_query"),
        Prefix:            e.str("PREFIX", "cache"),
        MaxBodyBytes:      e.int("MAX_BODY_BYTES", 1<<20),
        InvalidateOnWrite: e.flag("INVALIDATE_ON_WRITE", true),
    }
}
