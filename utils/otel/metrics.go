package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all OTel metric instruments for search-gateway.
// It is nil until InitMetrics runs; the record helpers are nil-safe.
var Metrics *GatewayMetrics

// GatewayMetrics contains all metric instruments.
type GatewayMetrics struct {
	CacheRequests     metric.Int64Counter
	SearchDuration    metric.Float64Histogram
	RateLimitRejected metric.Int64Counter
	IndexedTotal      metric.Int64Counter
	SkippedTotal      metric.Int64Counter
	FailedTotal       metric.Int64Counter
	ErrorsTotal       metric.Int64Counter
	CycleDuration     metric.Float64Histogram
}

// InitMetrics initializes all metric instruments on the global meter provider.
func InitMetrics() error {
	meter := otel.Meter("search-gateway")

	cacheRequests, err := meter.Int64Counter("search_gateway_cache_requests_total",
		metric.WithDescription("Search cache lookups by result (hit or miss)"),
	)
	if err != nil {
		return err
	}

	searchDuration, err := meter.Float64Histogram("search_gateway_search_duration_seconds",
		metric.WithDescription("Search request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	rateLimitRejected, err := meter.Int64Counter("search_gateway_rate_limited_total",
		metric.WithDescription("Total number of search requests rejected by the rate governor"),
	)
	if err != nil {
		return err
	}

	indexedTotal, err := meter.Int64Counter("search_gateway_indexed_total",
		metric.WithDescription("Total number of articles indexed"),
	)
	if err != nil {
		return err
	}

	skippedTotal, err := meter.Int64Counter("search_gateway_skipped_total",
		metric.WithDescription("Total number of articles skipped as already indexed"),
	)
	if err != nil {
		return err
	}

	failedTotal, err := meter.Int64Counter("search_gateway_index_failed_total",
		metric.WithDescription("Total number of articles that could not be indexed"),
	)
	if err != nil {
		return err
	}

	errorsTotal, err := meter.Int64Counter("search_gateway_errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return err
	}

	cycleDuration, err := meter.Float64Histogram("search_gateway_ingest_cycle_duration_seconds",
		metric.WithDescription("Ingestion cycle duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	Metrics = &GatewayMetrics{
		CacheRequests:     cacheRequests,
		SearchDuration:    searchDuration,
		RateLimitRejected: rateLimitRejected,
		IndexedTotal:      indexedTotal,
		SkippedTotal:      skippedTotal,
		FailedTotal:       failedTotal,
		ErrorsTotal:       errorsTotal,
		CycleDuration:     cycleDuration,
	}

	return nil
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(ctx context.Context, hit bool) {
	if Metrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	Metrics.CacheRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func RecordSearchDuration(ctx context.Context, seconds float64) {
	if Metrics == nil {
		return
	}
	Metrics.SearchDuration.Record(ctx, seconds)
}

func RecordRateLimited(ctx context.Context) {
	if Metrics == nil {
		return
	}
	Metrics.RateLimitRejected.Add(ctx, 1)
}

// RecordCycle records the outcome of one ingestion cycle.
func RecordCycle(ctx context.Context, indexed, skipped, failed int, seconds float64, abandoned bool) {
	if Metrics == nil {
		return
	}
	Metrics.IndexedTotal.Add(ctx, int64(indexed))
	Metrics.SkippedTotal.Add(ctx, int64(skipped))
	Metrics.FailedTotal.Add(ctx, int64(failed))
	Metrics.CycleDuration.Record(ctx, seconds, metric.WithAttributes(attribute.Bool("abandoned", abandoned)))
}

// RecordError counts an error in the named component.
func RecordError(ctx context.Context, component string) {
	if Metrics == nil {
		return
	}
	Metrics.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("component", component)))
}
