package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis-backed response cache placed in front of the
// public catalog routes.  With Enabled false, or without a Redis client, the
// middleware passes every request through untouched.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig builds a CacheConfig from CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      methodSet(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "outy:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

// methodSet turns "get, head" into {"GET": true, "HEAD": true}.
func methodSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, m := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' }) {
		set[strings.ToUpper(m)] = true
	}
	return set
}
