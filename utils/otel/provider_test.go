package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"OTEL_ENABLED", "OTEL_SERVICE_NAME", "SERVICE_VERSION", "SERVICE_INSTANCE_ID", "SEARCH_ENGINE", "FEED_SOURCE", "OTEL_TRACE_SAMPLE_RATIO"} {
		t.Setenv(k, "")
	}

	cfg := ConfigFromEnv()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "search-gateway", cfg.ServiceName)
	assert.Equal(t, "meilisearch", cfg.SearchEngine)
	assert.Equal(t, "nyt", cfg.FeedSource)
	assert.NotEmpty(t, cfg.InstanceID)
	assert.InDelta(t, 0.1, cfg.SampleRatio, 1e-9)
}

func TestResourceAttributes(t *testing.T) {
	t.Setenv("SEARCH_ENGINE", "bleve")
	t.Setenv("FEED_SOURCE", "rss")
	t.Setenv("SERVICE_INSTANCE_ID", "gw-1")
	t.Setenv("SERVICE_VERSION", "1.2.3")

	attrs := attribute.NewSet(resourceAttributes(ConfigFromEnv())...)

	for key, want := range map[attribute.Key]string{
		"service.name":               "search-gateway",
		"service.namespace":          "news",
		"service.version":            "1.2.3",
		"service.instance.id":        "gw-1",
		"search_gateway.engine":      "bleve",
		"search_gateway.feed_source": "rss",
	} {
		v, ok := attrs.Value(key)
		require.True(t, ok, "missing %s", key)
		assert.Equal(t, want, v.AsString(), key)
	}
}

func TestInitProvider_DisabledIsNoop(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
