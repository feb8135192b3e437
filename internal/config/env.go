package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// env reads typed variables sharing a name prefix.  Unset, empty or
// malformed values yield the default.
type env string

func (e env) lookup(name string) (string, bool) {
    v, ok := os.LookupEnv(string(e) + name)
    v = strings.TrimSpace(v)
    return v, ok && v != ""
}

func (e env) str(name, def string) string {
    if v, ok := e.lookup(name); ok {
        return v
    }
    return def
}

func (e env) flag(name string, def bool) bool {
    v, ok := e.lookup(name)
    if !ok {
        return def
    }
    switch strings.ToLower(v) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return def
}

func (e env) int(name string, def int) int {
    if v, ok := e.lookup(name); ok {
        if n, err := strconv.Atoi(v); err == nil {
            return n
        }
    }
    return def
}

func (e env) dur(name string, def time.Duration) time.Duration {
    if v, ok := e.lookup(name); ok {
        if d, err := time.ParseDuration(v); err == nil {
            return d
        }
    }
    return def
}

// list splits a comma-separated variable, dropping blanks.
func (e env) list(name, def string) []string {
    var out []string
    for _, p := range strings.Split(e.str(name, def), ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}

// vars reads unprefixed variables.
var vars env
