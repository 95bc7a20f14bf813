package config

import (
	"os"
	"time"
)

// AvailabilityCacheConfig defines settings for the public vehicle
// listing cache. When Enabled is false or no Redis client is configured
// the listing is always served from the database. TTL is a correctness
// backstop only; explicit invalidation on availability-changing writes
// is the primary consistency mechanism.
type AvailabilityCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// LoadAvailabilityCacheConfig reads environment variables to build an
// AvailabilityCacheConfig. Defaults are used when variables are not set.
func LoadAvailabilityCacheConfig() AvailabilityCacheConfig {
	return AvailabilityCacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "300s")),
	}
}

// Helper functions reused from redis.go and ratelimit.go
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
