package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-gateway/domain"
)

func TestListKeywordsUsecase_Execute(t *testing.T) {
	engine := newFakeSearchEngine()
	engine.keywords = []string{"Elections", "Climate"}

	got, err := NewListKeywordsUsecase(engine).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Elections", "Climate"}, got)

	engine.keywords = nil
	got, err = NewListKeywordsUsecase(engine).Execute(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)

	engine.searchErr = &domain.SearchEngineError{Op: "TopKeywords", Err: "down"}
	_, err = NewListKeywordsUsecase(engine).Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrEngineUnavailable)
}
