package gateway

import (
	"context"
	"search-gateway/domain"
	"search-gateway/driver"
)

type SearchDriver interface {
	Search(ctx context.Context, req driver.SearchRequest) ([]driver.ArticleHit, error)
	DocumentExists(ctx context.Context, docKey string) (bool, error)
	IndexDocument(ctx context.Context, doc driver.ArticleDocument) error
	FacetCounts(ctx context.Context, field string) ([]driver.FacetCount, error)
	Ping(ctx context.Context) error
	EnsureIndex(ctx context.Context) error
	Name() string
}

type SearchEngineGateway struct {
	driver SearchDriver
}

func NewSearchEngineGateway(driver SearchDriver) *SearchEngineGateway {
	return &SearchEngineGateway{
		driver: driver,
	}
}

func (g *SearchEngineGateway) Name() string {
	return g.driver.Name()
}

func (g *SearchEngineGateway) Search(ctx context.Context, query domain.EngineQuery) ([]domain.RawHit, error) {
	fields := make([]driver.WeightedField, len(query.Fields))
	for i, f := range query.Fields {
		fields[i] = driver.WeightedField{Name: f.Field, Weight: f.Boost}
	}

	driverHits, err := g.driver.Search(ctx, driver.SearchRequest{
		Query:          query.Text,
		Fields:         fields,
		MinShouldMatch: query.MinimumShouldMatch,
		Limit:          query.Limit,
	})
	if err != nil {
		return nil, &domain.SearchEngineError{
			Op:  "Search",
			Err: err.Error(),
		}
	}

	hits := make([]domain.RawHit, len(driverHits))
	for i, h := range driverHits {
		hits[i] = domain.RawHit{
			Document: toDomainArticle(h.Document),
			Score:    h.Score,
		}
	}
	return hits, nil
}

func (g *SearchEngineGateway) Exists(ctx context.Context, docKey string) (bool, error) {
	ok, err := g.driver.DocumentExists(ctx, docKey)
	if err != nil {
		return false, &domain.SearchEngineError{Op: "Exists", Err: err.Error()}
	}
	return ok, nil
}

func (g *SearchEngineGateway) IndexArticle(ctx context.Context, article domain.IndexedArticle) error {
	err := g.driver.IndexDocument(ctx, toDriverDocument(article))
	if err != nil {
		return &domain.SearchEngineError{
			Op:  "IndexArticle",
			Err: err.Error(),
		}
	}
	return nil
}

func (g *SearchEngineGateway) TopKeywords(ctx context.Context, limit int) ([]string, error) {
	facets, err := g.driver.FacetCounts(ctx, "keywords")
	if err != nil {
		return nil, &domain.SearchEngineError{Op: "TopKeywords", Err: err.Error()}
	}

	counts := make([]domain.KeywordCount, len(facets))
	for i, f := range facets {
		counts[i] = domain.KeywordCount{Keyword: f.Value, Count: f.Count}
	}
	return domain.TopKeywords(counts, limit), nil
}

func (g *SearchEngineGateway) Ping(ctx context.Context) error {
	if err := g.driver.Ping(ctx); err != nil {
		return &domain.SearchEngineError{Op: "Ping", Err: err.Error()}
	}
	return nil
}

func (g *SearchEngineGateway) EnsureIndex(ctx context.Context) error {
	err := g.driver.EnsureIndex(ctx)
	if err != nil {
		return &domain.SearchEngineError{
			Op:  "EnsureIndex",
			Err: err.Error(),
		}
	}
	return nil
}

func toDomainArticle(d driver.ArticleDocument) domain.IndexedArticle {
	return domain.IndexedArticle{
		DocKey:        d.DocKey,
		ID:            d.ID,
		Title:         d.Title,
		Author:        d.Author,
		PublishedDate: d.PublishedDate,
		Source:        d.Source,
		Content:       d.Content,
		URL:           d.URL,
		Section:       d.Section,
		Subsection:    d.Subsection,
		Keywords:      d.Keywords,
	}
}

func toDriverDocument(a domain.IndexedArticle) driver.ArticleDocument {
	return driver.ArticleDocument{
		DocKey:        a.DocKey,
		ID:            a.ID,
		Title:         a.Title,
		Author:        a.Author,
		PublishedDate: a.PublishedDate,
		Source:        a.Source,
		Content:       a.Content,
		URL:           a.URL,
		Section:       a.Section,
		Subsection:    a.Subsection,
		Keywords:      a.Keywords,
	}
}
