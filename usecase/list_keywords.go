package usecase

import (
	"context"
	"search-gateway/domain"
	"search-gateway/port"
)

type ListKeywordsUsecase struct {
	searchEngine port.SearchEngine
}

func NewListKeywordsUsecase(searchEngine port.SearchEngine) *ListKeywordsUsecase {
	return &ListKeywordsUsecase{searchEngine: searchEngine}
}

// Execute returns the most frequent article keywords, most frequent first.
func (u *ListKeywordsUsecase) Execute(ctx context.Context) ([]string, error) {
	keywords, err := u.searchEngine.TopKeywords(ctx, domain.MaxKeywords)
	if err != nil {
		return nil, err
	}
	if keywords == nil {
		keywords = []string{}
	}
	return keywords, nil
}
