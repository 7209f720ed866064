package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"search-gateway/domain"
	"search-gateway/port"
	appOtel "search-gateway/utils/otel"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheTTL is how long a cached result set stays valid.
	DefaultCacheTTL = 1200 * time.Second
	// sharedSearchTimeout bounds an engine call that outlives its callers.
	sharedSearchTimeout = 30 * time.Second
)

// CachedSearchUsecase answers searches from the result cache, falling back
// to the search engine on a miss and caching the filtered results.
type CachedSearchUsecase struct {
	cache    port.CacheStore
	engine   port.SearchEngine
	ttl      time.Duration
	failOpen bool
	group    singleflight.Group
	logger   *slog.Logger
}

// CachedSearchOption customises a CachedSearchUsecase.
type CachedSearchOption func(*CachedSearchUsecase)

// WithCacheFailOpen makes an unreachable cache store degrade to uncached
// engine queries. By default a failed cache read fails the search.
func WithCacheFailOpen(failOpen bool) CachedSearchOption {
	return func(u *CachedSearchUsecase) {
		u.failOpen = failOpen
	}
}

func NewCachedSearchUsecase(cache port.CacheStore, engine port.SearchEngine, ttl time.Duration, logger *slog.Logger, opts ...CachedSearchOption) *CachedSearchUsecase {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	u := &CachedSearchUsecase{
		cache:  cache,
		engine: engine,
		ttl:    ttl,
		logger: logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Execute returns the documents scoring above the query threshold, in engine order.
func (u *CachedSearchUsecase) Execute(ctx context.Context, query domain.SearchQuery) ([]domain.ScoredDocument, error) {
	start := time.Now()
	defer func() {
		appOtel.RecordSearchDuration(ctx, time.Since(start).Seconds())
	}()

	key := query.CacheKey()

	cached, ok, err := u.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		appOtel.RecordCacheLookup(ctx, true)
		return cached, nil
	}
	appOtel.RecordCacheLookup(ctx, false)

	// Concurrent misses on the same key share one engine call. The call is
	// detached from any single caller so one disconnect cannot fail the rest.
	ch := u.group.DoChan(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedSearchTimeout)
		defer cancel()
		return u.searchAndStore(shared, query, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.ScoredDocument), nil
	}
}

func (u *CachedSearchUsecase) lookup(ctx context.Context, key string) ([]domain.ScoredDocument, bool, error) {
	payload, found, err := u.cache.Get(ctx, key)
	if err != nil {
		if !u.failOpen {
			return nil, false, fmt.Errorf("read cached results: %w", err)
		}
		u.logger.WarnContext(ctx, "cache read failed, querying engine", "key", key, "error", err)
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}

	var docs []domain.ScoredDocument
	if err := json.Unmarshal(payload, &docs); err != nil {
		u.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", err)
		return nil, false, nil
	}
	if docs == nil {
		docs = []domain.ScoredDocument{}
	}
	return docs, true, nil
}

func (u *CachedSearchUsecase) searchAndStore(ctx context.Context, query domain.SearchQuery, key string) ([]domain.ScoredDocument, error) {
	hits, err := u.engine.Search(ctx, domain.NewArticleEngineQuery(query))
	if err != nil {
		appOtel.RecordError(ctx, "search")
		return nil, err
	}

	results := domain.FilterHits(hits, query.Threshold())

	payload, err := json.Marshal(results)
	if err != nil {
		u.logger.ErrorContext(ctx, "failed to encode results for cache", "key", key, "error", err)
		return results, nil
	}
	if err := u.cache.Set(ctx, key, payload, u.ttl); err != nil {
		u.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}

	return results, nil
}
