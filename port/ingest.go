package port

import (
	"context"
	"search-gateway/domain"
)

type ArticleFetcher interface {
	Fetch(ctx context.Context) ([]domain.RawArticle, error)
}

type TextNormalizer interface {
	Normalize(text string) string
}
