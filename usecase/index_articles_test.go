package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"search-gateway/domain"
)

type upperNormalizer struct{}

func (upperNormalizer) Normalize(text string) string { return strings.ToUpper(text) }

func rawArticle(url string) domain.RawArticle {
	return domain.RawArticle{
		URL:      url,
		Title:    "Title " + url,
		Byline:   "By A, B, C",
		Abstract: "abstract",
		DesFacet: []string{"Elections"},
	}
}

func TestIndexArticlesUsecase_Execute(t *testing.T) {
	existing := rawArticle("https://old")

	tests := []struct {
		name      string
		articles  []domain.RawArticle
		indexErr  error
		existsErr error
		want      IndexReport
		wantDocs  int
	}{
		{
			name:     "indexes new articles",
			articles: []domain.RawArticle{rawArticle("https://a"), rawArticle("https://b")},
			want:     IndexReport{Indexed: 2},
			wantDocs: 3,
		},
		{
			name:     "skips existing url without writing",
			articles: []domain.RawArticle{existing},
			want:     IndexReport{Skipped: 1},
			wantDocs: 1,
		},
		{
			name:     "duplicate urls in one batch are indexed once",
			articles: []domain.RawArticle{rawArticle("https://a"), rawArticle("https://a")},
			want:     IndexReport{Indexed: 1, Skipped: 1},
			wantDocs: 2,
		},
		{
			name:     "empty url fails without aborting",
			articles: []domain.RawArticle{rawArticle(""), rawArticle("https://a")},
			want:     IndexReport{Indexed: 1, Failed: 1},
			wantDocs: 2,
		},
		{
			name:     "write failure is counted",
			articles: []domain.RawArticle{rawArticle("https://a")},
			indexErr: errors.New("engine down"),
			want:     IndexReport{Failed: 1},
			wantDocs: 1,
		},
		{
			name:      "exists check failure is counted",
			articles:  []domain.RawArticle{rawArticle("https://a")},
			existsErr: errors.New("engine down"),
			want:      IndexReport{Failed: 1},
			wantDocs:  1,
		},
		{
			name:     "empty batch",
			articles: nil,
			want:     IndexReport{},
			wantDocs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newFakeSearchEngine()
			seed, _ := domain.NewIndexedArticle(existing, "", nil)
			engine.docs[seed.DocKey] = seed
			engine.indexErr = tt.indexErr
			engine.existsErr = tt.existsErr

			u := NewIndexArticlesUsecase(engine, upperNormalizer{}, "", time.Second, nil)
			report, err := u.Execute(context.Background(), tt.articles)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report != tt.want {
				t.Errorf("report = %+v, want %+v", report, tt.want)
			}
			if got := engine.indexedCount(); got != tt.wantDocs {
				t.Errorf("engine holds %d docs, want %d", got, tt.wantDocs)
			}
		})
	}
}

func TestIndexArticlesUsecase_Transform(t *testing.T) {
	engine := newFakeSearchEngine()
	u := NewIndexArticlesUsecase(engine, upperNormalizer{}, "Wire", time.Second, nil)

	if _, err := u.Execute(context.Background(), []domain.RawArticle{rawArticle("https://a")}); err != nil {
		t.Fatal(err)
	}

	doc, ok := engine.docs[domain.DocKey("https://a")]
	if !ok {
		t.Fatal("article not indexed under its doc key")
	}
	if doc.Content != "ABSTRACT" || doc.Source != "Wire" || doc.Author != "By A, B" || doc.ID != "https://a" {
		t.Errorf("unexpected indexed article: %+v", doc)
	}
}

func TestIndexArticlesUsecase_StopsBetweenArticles(t *testing.T) {
	engine := newFakeSearchEngine()
	u := NewIndexArticlesUsecase(engine, nil, "", time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := u.Execute(ctx, []domain.RawArticle{rawArticle("https://a")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if report.Indexed != 0 || engine.indexedCount() != 0 {
		t.Errorf("nothing may be written after cancellation: %+v", report)
	}
}
