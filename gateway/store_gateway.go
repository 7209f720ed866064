package gateway

import (
	"context"
	"search-gateway/domain"
	"time"
)

type KeyValueDriver interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error)
	Ping(ctx context.Context) error
}

// StoreGateway exposes Redis as both the result cache and the rate counter store.
type StoreGateway struct {
	driver KeyValueDriver
}

func NewStoreGateway(driver KeyValueDriver) *StoreGateway {
	return &StoreGateway{driver: driver}
}

func (g *StoreGateway) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found, err := g.driver.Get(ctx, key)
	if err != nil {
		return nil, false, domain.NewStoreUnavailable("Get", err)
	}
	return value, found, nil
}

func (g *StoreGateway) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := g.driver.Set(ctx, key, value, ttl); err != nil {
		return domain.NewStoreUnavailable("Set", err)
	}
	return nil
}

func (g *StoreGateway) IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := g.driver.IncrWithExpiry(ctx, key, window)
	if err != nil {
		return 0, domain.NewStoreUnavailable("IncrWithExpiry", err)
	}
	return count, nil
}

func (g *StoreGateway) Ping(ctx context.Context) error {
	if err := g.driver.Ping(ctx); err != nil {
		return domain.NewStoreUnavailable("Ping", err)
	}
	return nil
}
