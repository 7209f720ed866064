package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"search-gateway/domain"
)

type fakeSearchEngine struct {
	mu          sync.Mutex
	hits        []domain.RawHit
	docs        map[string]domain.IndexedArticle
	keywords    []string
	searchCalls atomic.Int64
	searchDelay time.Duration
	// release, when set, holds Search until closed or ctx is done.
	release   chan struct{}
	searchErr error
	existsErr error
	indexErr  error
	pingErr   error
	lastQuery domain.EngineQuery
}

func newFakeSearchEngine() *fakeSearchEngine {
	return &fakeSearchEngine{docs: map[string]domain.IndexedArticle{}}
}

func (f *fakeSearchEngine) Search(ctx context.Context, query domain.EngineQuery) ([]domain.RawHit, error) {
	f.searchCalls.Add(1)
	if f.searchDelay > 0 {
		time.Sleep(f.searchDelay)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeSearchEngine) Exists(ctx context.Context, docKey string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.docs[docKey]
	return ok, nil
}

func (f *fakeSearchEngine) IndexArticle(ctx context.Context, article domain.IndexedArticle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexErr != nil {
		return f.indexErr
	}
	f.docs[article.DocKey] = article
	return nil
}

func (f *fakeSearchEngine) TopKeywords(ctx context.Context, limit int) ([]string, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.keywords, nil
}

func (f *fakeSearchEngine) Ping(ctx context.Context) error        { return f.pingErr }
func (f *fakeSearchEngine) EnsureIndex(ctx context.Context) error { return nil }
func (f *fakeSearchEngine) Name() string                          { return "fake" }

func (f *fakeSearchEngine) indexedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	pingErr error
	gets    atomic.Int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return c.pingErr }
