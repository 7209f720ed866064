package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"search-gateway/domain"
	"search-gateway/logger"
	"search-gateway/port"
	"search-gateway/usecase"
	appOtel "search-gateway/utils/otel"

	"github.com/google/uuid"
)

// DefaultInterval is the pause between two ingestion cycles.
const DefaultInterval = 1200 * time.Second

// ArticleIndexer writes a fetched batch into the search engine.
type ArticleIndexer interface {
	Execute(ctx context.Context, articles []domain.RawArticle) (usecase.IndexReport, error)
}

type Config struct {
	Interval time.Duration
	Policy   RetryPolicy
}

// CycleReport summarizes one fetch and index cycle.
type CycleReport struct {
	CycleID   string
	Fetched   int
	Indexed   int
	Skipped   int
	Failed    int
	Attempts  int
	Abandoned bool
	Err       error
}

// Loop periodically fetches articles and indexes the ones not yet known.
type Loop struct {
	fetcher port.ArticleFetcher
	indexer ArticleIndexer
	cfg     Config
	logger  *slog.Logger

	state   atomic.Int32
	trigger chan struct{}

	mu   sync.Mutex
	last *CycleReport
}

func NewLoop(fetcher port.ArticleFetcher, indexer ArticleIndexer, cfg Config, logger *slog.Logger) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		fetcher: fetcher,
		indexer: indexer,
		cfg:     cfg,
		logger:  logger,
		trigger: make(chan struct{}, 1),
	}
}

func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
}

// LastReport returns the report of the most recently finished cycle.
func (l *Loop) LastReport() (CycleReport, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return CycleReport{}, false
	}
	return *l.last, true
}

// Trigger wakes a sleeping loop. Triggers received while a cycle is running
// collapse into a single extra cycle.
func (l *Loop) Trigger() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

// Run starts with an immediate cycle and then alternates between sleeping
// and cycling until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.InfoContext(ctx, "ingestion loop starting", "interval", l.cfg.Interval)
	defer l.setState(Idle)

	for {
		l.safeCycle(ctx)

		if err := l.sleep(ctx); err != nil {
			l.logger.InfoContext(ctx, "ingestion loop stopping")
			return err
		}
	}
}

func (l *Loop) safeCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			appOtel.RecordError(ctx, "ingest")
			l.logger.ErrorContext(ctx, "ingestion cycle panic recovered", "err", r)
		}
	}()
	l.RunCycle(ctx)
}

func (l *Loop) sleep(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.setState(Sleeping)

	timer := time.NewTimer(l.cfg.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	case <-l.trigger:
		l.logger.InfoContext(ctx, "ingestion cycle triggered")
	}
	return nil
}

// RunCycle fetches under the retry policy and indexes the batch. A cycle
// whose fetch fails is abandoned without touching the index.
func (l *Loop) RunCycle(ctx context.Context) CycleReport {
	start := time.Now()
	report := CycleReport{CycleID: uuid.NewString()}
	ctx = logger.WithCycleID(ctx, report.CycleID)
	log := logger.NewContextLogger(l.logger)

	defer func() {
		appOtel.RecordCycle(ctx, report.Indexed, report.Skipped, report.Failed, time.Since(start).Seconds(), report.Abandoned)
		l.mu.Lock()
		l.last = &report
		l.mu.Unlock()
	}()

	fetchCtx := logger.WithIngestStage(ctx, "fetch")
	var articles []domain.RawArticle
	attempts, err := l.cfg.Policy.Run(fetchCtx, func(ctx context.Context) error {
		l.setState(Fetching)
		fetched, err := l.fetcher.Fetch(ctx)
		if err != nil {
			return err
		}
		articles = fetched
		return nil
	}, func(attempt uint, err error, next time.Duration) {
		l.setState(Retrying)
		log.WithContext(fetchCtx).WarnContext(fetchCtx, "article fetch failed, retrying",
			"attempt", attempt, "retry_in", next, "error", err)
	})
	report.Attempts = int(attempts)
	if err != nil {
		report.Abandoned = true
		report.Err = fmt.Errorf("fetch articles: %w", err)
		appOtel.RecordError(ctx, "fetch")
		log.WithContext(fetchCtx).ErrorContext(fetchCtx, "article fetch failed, abandoning cycle",
			"attempts", attempts, "error", err)
		return report
	}
	report.Fetched = len(articles)

	l.setState(Indexing)
	indexCtx := logger.WithIngestStage(ctx, "index")
	result, err := l.indexer.Execute(indexCtx, articles)
	report.Indexed = result.Indexed
	report.Skipped = result.Skipped
	report.Failed = result.Failed
	if err != nil {
		report.Err = err
		log.WithContext(indexCtx).WarnContext(indexCtx, "indexing interrupted", "error", err)
	}

	log.WithContext(ctx).InfoContext(ctx, "ingestion cycle complete",
		"fetched", report.Fetched,
		"indexed", report.Indexed,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report
}
