package usecase

import (
	"context"
	"search-gateway/port"
	"time"

	"golang.org/x/sync/errgroup"
)

const healthTimeout = 5 * time.Second

// Pinger is a dependency that can report its availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CheckHealthUsecase struct {
	searchEngine port.SearchEngine
	store        Pinger
}

// HealthReport names the search engine that answered.
type HealthReport struct {
	Engine string
}

func NewCheckHealthUsecase(searchEngine port.SearchEngine, store Pinger) *CheckHealthUsecase {
	return &CheckHealthUsecase{searchEngine: searchEngine, store: store}
}

// Execute pings the search engine and the store concurrently and returns the
// first failure.
func (u *CheckHealthUsecase) Execute(ctx context.Context) (HealthReport, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return u.searchEngine.Ping(gctx) })
	g.Go(func() error { return u.store.Ping(gctx) })

	if err := g.Wait(); err != nil {
		return HealthReport{}, err
	}
	return HealthReport{Engine: u.searchEngine.Name()}, nil
}
