package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultHTTPAddr         = ":5000"
	DefaultSearchEngine     = EngineMeilisearch
	DefaultMeilisearchIndex = "news_articles"
	DefaultRedisURL         = "redis://localhost:6379/0"
	DefaultFeedSource       = FeedNYT
	DefaultFeedTimeout      = 10 * time.Second
	DefaultIngestInterval   = 1200 * time.Second
	DefaultMaxAttempts      = 3
	DefaultRetryDelay       = 30 * time.Second
	DefaultIndexTimeout     = 15 * time.Second
	DefaultCacheTTL         = 1200 * time.Second
	DefaultRateLimit        = 5
	DefaultRateLimitWindow  = 1200 * time.Second
	DefaultEdgeRate         = 50.0
	DefaultEdgeBurst        = 100
)

const (
	EngineMeilisearch = "meilisearch"
	EngineBleve       = "bleve"

	FeedNYT = "nyt"
	FeedRSS = "rss"
)

// Service constants with env var override support.
var (
	ReadHeaderTimeout = durationEnv("HTTP_READ_HEADER_TIMEOUT", 5*time.Second)
	ShutdownTimeout   = durationEnv("SHUTDOWN_TIMEOUT", 30*time.Second)
	MeiliConnectTries = intEnv("MEILI_CONNECT_TRIES", 5)
	MeiliConnectDelay = durationEnv("MEILI_CONNECT_DELAY", 5*time.Second)
)

func intEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func durationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := parseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// parseDuration accepts Go durations ("90s") and plain seconds ("1200").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
