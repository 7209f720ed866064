package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTP      HTTPConfig
	Search    SearchConfig
	Redis     RedisConfig
	Feed      FeedConfig
	Ingest    IngestConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

type HTTPConfig struct {
	Addr string
}

type SearchConfig struct {
	Engine            string
	MeilisearchHost   string
	MeilisearchAPIKey string
	MeilisearchIndex  string
	BleveIndexPath    string
}

type RedisConfig struct {
	URL string
}

type FeedConfig struct {
	Source      string
	NYTAPIKey   string
	NYTEndpoint string
	RSSFeedURL  string
	Timeout     time.Duration
	SourceName  string
}

type IngestConfig struct {
	Interval     time.Duration
	MaxAttempts  uint
	RetryDelay   time.Duration
	IndexTimeout time.Duration
}

type CacheConfig struct {
	TTL time.Duration
	// FailOpen serves searches straight from the engine while the cache
	// store is unreachable instead of failing them.
	FailOpen bool
}

type RateLimitConfig struct {
	Limit     int64
	Window    time.Duration
	FailOpen  bool
	EdgeRate  float64
	EdgeBurst int
}

// Load reads the configuration from the environment. Every key also
// accepts a KEY_FILE variant pointing at a file holding the value.
func Load() (*Config, error) {
	r := &envReader{}

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr: getEnvOrDefault("HTTP_ADDR", DefaultHTTPAddr),
		},
		Search: SearchConfig{
			Engine:            strings.ToLower(getEnvOrDefault("SEARCH_ENGINE", DefaultSearchEngine)),
			MeilisearchHost:   getEnvOrDefault("MEILISEARCH_HOST", ""),
			MeilisearchAPIKey: getEnvOrDefault("MEILISEARCH_API_KEY", ""),
			MeilisearchIndex:  getEnvOrDefault("MEILISEARCH_INDEX", DefaultMeilisearchIndex),
			BleveIndexPath:    getEnvOrDefault("BLEVE_INDEX_PATH", ""),
		},
		Redis: RedisConfig{
			URL: getEnvOrDefault("REDIS_URL", DefaultRedisURL),
		},
		Feed: FeedConfig{
			Source:      strings.ToLower(getEnvOrDefault("FEED_SOURCE", DefaultFeedSource)),
			NYTAPIKey:   getEnvOrDefault("NYT_API_KEY", ""),
			NYTEndpoint: getEnvOrDefault("NYT_ENDPOINT", ""),
			RSSFeedURL:  getEnvOrDefault("RSS_FEED_URL", ""),
			Timeout:     r.duration("FEED_TIMEOUT", DefaultFeedTimeout),
			SourceName:  getEnvOrDefault("SOURCE_NAME", ""),
		},
		Ingest: IngestConfig{
			Interval:     r.duration("INGEST_INTERVAL", DefaultIngestInterval),
			MaxAttempts:  uint(r.integer("INGEST_MAX_ATTEMPTS", DefaultMaxAttempts)),
			RetryDelay:   r.duration("INGEST_RETRY_DELAY", DefaultRetryDelay),
			IndexTimeout: r.duration("INGEST_INDEX_TIMEOUT", DefaultIndexTimeout),
		},
		RateLimit: RateLimitConfig{
			Limit:     int64(r.integer("RATE_LIMIT", DefaultRateLimit)),
			Window:    r.duration("RATE_LIMIT_WINDOW", DefaultRateLimitWindow),
			FailOpen:  r.boolean("RATE_LIMIT_FAIL_OPEN", false),
			EdgeRate:  r.float("EDGE_RATE", DefaultEdgeRate),
			EdgeBurst: r.integer("EDGE_BURST", DefaultEdgeBurst),
		},
	}
	cfg.Cache = CacheConfig{
		TTL:      r.duration("CACHE_TTL", DefaultCacheTTL),
		FailOpen: r.boolean("CACHE_FAIL_OPEN", cfg.RateLimit.FailOpen),
	}

	if err := errors.Join(append(r.errs, cfg.Validate())...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("Configuration loaded",
		"search_engine", cfg.Search.Engine,
		"meilisearch_host", cfg.Search.MeilisearchHost,
		"feed_source", cfg.Feed.Source,
		"ingest_interval", cfg.Ingest.Interval,
	)

	return cfg, nil
}

// Validate checks cross-field requirements and value ranges.
func (c *Config) Validate() error {
	var errs []error

	switch c.Search.Engine {
	case EngineMeilisearch:
		if c.Search.MeilisearchHost == "" {
			errs = append(errs, errors.New("MEILISEARCH_HOST is required when SEARCH_ENGINE=meilisearch"))
		}
	case EngineBleve:
	default:
		errs = append(errs, fmt.Errorf("SEARCH_ENGINE must be %q or %q, got %q", EngineMeilisearch, EngineBleve, c.Search.Engine))
	}

	switch c.Feed.Source {
	case FeedNYT:
		if c.Feed.NYTAPIKey == "" {
			errs = append(errs, errors.New("NYT_API_KEY is required when FEED_SOURCE=nyt"))
		}
	case FeedRSS:
		if c.Feed.RSSFeedURL == "" {
			errs = append(errs, errors.New("RSS_FEED_URL is required when FEED_SOURCE=rss"))
		}
	default:
		errs = append(errs, fmt.Errorf("FEED_SOURCE must be %q or %q, got %q", FeedNYT, FeedRSS, c.Feed.Source))
	}

	positive := map[string]time.Duration{
		"FEED_TIMEOUT":         c.Feed.Timeout,
		"INGEST_INTERVAL":      c.Ingest.Interval,
		"INGEST_INDEX_TIMEOUT": c.Ingest.IndexTimeout,
		"CACHE_TTL":            c.Cache.TTL,
		"RATE_LIMIT_WINDOW":    c.RateLimit.Window,
	}
	for key, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", key))
		}
	}
	if c.Ingest.RetryDelay < 0 {
		errs = append(errs, errors.New("INGEST_RETRY_DELAY must not be negative"))
	}
	if c.Ingest.MaxAttempts == 0 {
		errs = append(errs, errors.New("INGEST_MAX_ATTEMPTS must be positive"))
	}
	if c.RateLimit.Limit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT must be positive"))
	}
	if c.RateLimit.EdgeRate <= 0 || c.RateLimit.EdgeBurst <= 0 {
		errs = append(errs, errors.New("EDGE_RATE and EDGE_BURST must be positive"))
	}

	return errors.Join(errs...)
}

// envReader parses typed values and collects the parse errors.
type envReader struct {
	errs []error
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := getEnvOrDefault(key, "")
	if v == "" {
		return def
	}
	d, err := parseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (r *envReader) integer(key string, def int) int {
	v := getEnvOrDefault(key, "")
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid non-negative integer %q", key, v))
		return def
	}
	return i
}

func (r *envReader) float(key string, def float64) float64 {
	v := getEnvOrDefault(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

func (r *envReader) boolean(key string, def bool) bool {
	v := getEnvOrDefault(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func getEnvOrDefault(key, defaultValue string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
		slog.Warn("failed to read secret file", "key", key, "error", err)
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
