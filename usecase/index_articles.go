package usecase

import (
	"context"
	"log/slog"
	"search-gateway/domain"
	"search-gateway/logger"
	"search-gateway/port"
	"time"
)

// DefaultIndexTimeout bounds one exists-check plus write pair.
const DefaultIndexTimeout = 15 * time.Second

type IndexArticlesUsecase struct {
	searchEngine port.SearchEngine
	normalizer   port.TextNormalizer
	sourceName   string
	timeout      time.Duration
	logger       *slog.Logger
}

// IndexReport counts the outcome of one batch.
type IndexReport struct {
	Indexed int
	Skipped int
	Failed  int
}

func NewIndexArticlesUsecase(searchEngine port.SearchEngine, normalizer port.TextNormalizer, sourceName string, timeout time.Duration, logger *slog.Logger) *IndexArticlesUsecase {
	if timeout <= 0 {
		timeout = DefaultIndexTimeout
	}
	if sourceName == "" {
		sourceName = domain.DefaultSourceName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexArticlesUsecase{
		searchEngine: searchEngine,
		normalizer:   normalizer,
		sourceName:   sourceName,
		timeout:      timeout,
		logger:       logger,
	}
}

// Execute indexes every article not already present in the engine.
// Cancellation is only observed between articles; a started check-then-write
// pair always completes. A failed article never aborts the batch.
func (u *IndexArticlesUsecase) Execute(ctx context.Context, articles []domain.RawArticle) (IndexReport, error) {
	var report IndexReport
	log := logger.NewContextLogger(u.logger)
	seen := make(map[string]struct{}, len(articles))

	var normalize func(string) string
	if u.normalizer != nil {
		normalize = u.normalizer.Normalize
	}

	for _, raw := range articles {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		articleCtx := logger.WithArticleURL(ctx, raw.URL)
		article, err := domain.NewIndexedArticle(raw, u.sourceName, normalize)
		if err != nil {
			log.WithContext(articleCtx).WarnContext(articleCtx, "skipping invalid article", "error", err)
			report.Failed++
			continue
		}

		if _, dup := seen[article.DocKey]; dup {
			report.Skipped++
			continue
		}
		seen[article.DocKey] = struct{}{}

		switch indexed, err := u.indexOne(articleCtx, article); {
		case err != nil:
			log.WithContext(articleCtx).ErrorContext(articleCtx, "failed to index article", "error", err)
			report.Failed++
		case indexed:
			report.Indexed++
		default:
			report.Skipped++
		}
	}

	return report, nil
}

func (u *IndexArticlesUsecase) indexOne(ctx context.Context, article domain.IndexedArticle) (bool, error) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.timeout)
	defer cancel()

	exists, err := u.searchEngine.Exists(wctx, article.DocKey)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := u.searchEngine.IndexArticle(wctx, article); err != nil {
		return false, err
	}
	return true, nil
}
