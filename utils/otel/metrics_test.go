package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordHelpers_NilSafe(t *testing.T) {
	saved := Metrics
	Metrics = nil
	defer func() { Metrics = saved }()

	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordCacheLookup(ctx, true)
		RecordSearchDuration(ctx, 0.1)
		RecordRateLimited(ctx)
		RecordCycle(ctx, 1, 2, 3, 0.5, false)
		RecordError(ctx, "ingest")
	})
}

func TestInitMetrics_RecordsOnGlobalProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	savedProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	savedMetrics := Metrics
	defer func() {
		otel.SetMeterProvider(savedProvider)
		Metrics = savedMetrics
	}()

	require.NoError(t, InitMetrics())

	ctx := context.Background()
	RecordCacheLookup(ctx, true)
	RecordCacheLookup(ctx, false)
	RecordCycle(ctx, 4, 1, 0, 2.5, false)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["search_gateway_cache_requests_total"])
	assert.True(t, names["search_gateway_indexed_total"])
	assert.True(t, names["search_gateway_ingest_cycle_duration_seconds"])
}
