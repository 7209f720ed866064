package gateway

import (
	"context"
	"errors"
	"search-gateway/domain"
	"search-gateway/driver"
)

// FeedDriver fetches the current records of a news feed.
type FeedDriver func(ctx context.Context) ([]driver.FeedArticle, error)

type ArticleFetcherGateway struct {
	fetch FeedDriver
}

func NewArticleFetcherGateway(fetch FeedDriver) *ArticleFetcherGateway {
	return &ArticleFetcherGateway{
		fetch: fetch,
	}
}

// Fetch converts feed records to domain articles. Temporary feed failures
// become *domain.TransientFetchError.
func (g *ArticleFetcherGateway) Fetch(ctx context.Context) ([]domain.RawArticle, error) {
	feedArticles, err := g.fetch(ctx)
	if err != nil {
		var feedErr *driver.FeedError
		if errors.As(err, &feedErr) && feedErr.Temporary {
			return nil, &domain.TransientFetchError{Op: "Fetch", Err: err}
		}
		return nil, &domain.DriverError{Op: "Fetch", Err: err.Error()}
	}

	articles := make([]domain.RawArticle, len(feedArticles))
	for i, a := range feedArticles {
		articles[i] = domain.RawArticle{
			URL:           a.URL,
			Title:         a.Title,
			Byline:        a.Byline,
			PublishedDate: a.PublishedDate,
			Abstract:      a.Abstract,
			Section:       a.Section,
			Subsection:    a.Subsection,
			DesFacet:      a.DesFacet,
		}
	}
	return articles, nil
}
