package port

import (
	"context"
	"search-gateway/domain"
)

// SearchEngine is the full-text index holding IndexedArticles.
type SearchEngine interface {
	// Search returns raw hits in engine relevance order.
	Search(ctx context.Context, query domain.EngineQuery) ([]domain.RawHit, error)
	Exists(ctx context.Context, docKey string) (bool, error)
	IndexArticle(ctx context.Context, article domain.IndexedArticle) error
	// TopKeywords returns up to limit keywords by descending document frequency.
	TopKeywords(ctx context.Context, limit int) ([]string, error)
	Ping(ctx context.Context) error
	EnsureIndex(ctx context.Context) error
	Name() string
}
