package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_ADDR", "SEARCH_ENGINE", "MEILISEARCH_HOST", "MEILISEARCH_API_KEY", "MEILISEARCH_INDEX",
	"BLEVE_INDEX_PATH", "REDIS_URL", "FEED_SOURCE", "NYT_API_KEY", "NYT_API_KEY_FILE", "NYT_ENDPOINT",
	"RSS_FEED_URL", "FEED_TIMEOUT", "SOURCE_NAME", "INGEST_INTERVAL", "INGEST_MAX_ATTEMPTS",
	"INGEST_RETRY_DELAY", "INGEST_INDEX_TIMEOUT", "CACHE_TTL", "RATE_LIMIT", "RATE_LIMIT_WINDOW",
	"RATE_LIMIT_FAIL_OPEN", "CACHE_FAIL_OPEN", "EDGE_RATE", "EDGE_BURST",
}

// clearEnv blanks every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEILISEARCH_HOST", "http://localhost:7700")
	t.Setenv("NYT_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.HTTP.Addr)
	assert.Equal(t, EngineMeilisearch, cfg.Search.Engine)
	assert.Equal(t, "news_articles", cfg.Search.MeilisearchIndex)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, FeedNYT, cfg.Feed.Source)
	assert.Equal(t, 1200*time.Second, cfg.Ingest.Interval)
	assert.Equal(t, uint(3), cfg.Ingest.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Ingest.RetryDelay)
	assert.Equal(t, 1200*time.Second, cfg.Cache.TTL)
	assert.Equal(t, int64(5), cfg.RateLimit.Limit)
	assert.Equal(t, 1200*time.Second, cfg.RateLimit.Window)
	assert.False(t, cfg.RateLimit.FailOpen)
	assert.False(t, cfg.Cache.FailOpen)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEARCH_ENGINE", "Bleve")
	t.Setenv("FEED_SOURCE", "rss")
	t.Setenv("RSS_FEED_URL", "https://example.com/feed.xml")
	t.Setenv("INGEST_INTERVAL", "600")
	t.Setenv("INGEST_RETRY_DELAY", "5s")
	t.Setenv("RATE_LIMIT", "10")
	t.Setenv("RATE_LIMIT_FAIL_OPEN", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EngineBleve, cfg.Search.Engine)
	assert.Equal(t, 600*time.Second, cfg.Ingest.Interval)
	assert.Equal(t, 5*time.Second, cfg.Ingest.RetryDelay)
	assert.Equal(t, int64(10), cfg.RateLimit.Limit)
	assert.True(t, cfg.RateLimit.FailOpen)
	assert.True(t, cfg.Cache.FailOpen, "cache follows the rate limiter unless set")
}

func TestLoad_CacheFailOpenOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEARCH_ENGINE", "bleve")
	t.Setenv("NYT_API_KEY", "key")
	t.Setenv("RATE_LIMIT_FAIL_OPEN", "true")
	t.Setenv("CACHE_FAIL_OPEN", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.RateLimit.FailOpen)
	assert.False(t, cfg.Cache.FailOpen)
}

func TestLoad_SecretFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nyt_key")
	require.NoError(t, os.WriteFile(path, []byte("  from-file\n"), 0o600))

	t.Setenv("SEARCH_ENGINE", "bleve")
	t.Setenv("NYT_API_KEY_FILE", path)
	t.Setenv("NYT_API_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Feed.NYTAPIKey)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantMsg string
	}{
		{
			name:    "meilisearch without host",
			envVars: map[string]string{"NYT_API_KEY": "key"},
			wantMsg: "MEILISEARCH_HOST is required",
		},
		{
			name:    "unknown engine",
			envVars: map[string]string{"SEARCH_ENGINE": "solr", "NYT_API_KEY": "key"},
			wantMsg: "SEARCH_ENGINE must be",
		},
		{
			name:    "nyt without key",
			envVars: map[string]string{"SEARCH_ENGINE": "bleve"},
			wantMsg: "NYT_API_KEY is required",
		},
		{
			name:    "rss without url",
			envVars: map[string]string{"SEARCH_ENGINE": "bleve", "FEED_SOURCE": "rss"},
			wantMsg: "RSS_FEED_URL is required",
		},
		{
			name:    "malformed duration",
			envVars: map[string]string{"SEARCH_ENGINE": "bleve", "NYT_API_KEY": "key", "CACHE_TTL": "soon"},
			wantMsg: "CACHE_TTL: invalid duration",
		},
		{
			name:    "zero rate limit",
			envVars: map[string]string{"SEARCH_ENGINE": "bleve", "NYT_API_KEY": "key", "RATE_LIMIT": "0"},
			wantMsg: "RATE_LIMIT must be positive",
		},
		{
			name:    "malformed boolean",
			envVars: map[string]string{"SEARCH_ENGINE": "bleve", "NYT_API_KEY": "key", "RATE_LIMIT_FAIL_OPEN": "maybe"},
			wantMsg: "RATE_LIMIT_FAIL_OPEN: invalid boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("1200")
	require.NoError(t, err)
	assert.Equal(t, 1200*time.Second, d)

	d, err = parseDuration("1m30s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = parseDuration("later")
	assert.Error(t, err)
}
