package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-gateway/domain"
	"search-gateway/driver"
	"search-gateway/gateway"
)

func newRedisGovernor(t *testing.T) (*Governor, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	d := driver.NewRedisDriver(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = d.Close() })
	return NewGovernor(gateway.NewStoreGateway(d)), mr
}

func TestGovernor_Admit(t *testing.T) {
	g, mr := newRedisGovernor(t)
	ctx := context.Background()
	window := 1200 * time.Second

	for i := 1; i <= 5; i++ {
		ok, err := g.Admit(ctx, "alice", 5, window)
		require.NoError(t, err)
		assert.True(t, ok, "call %d should be admitted", i)
	}

	ok, err := g.Admit(ctx, "alice", 5, window)
	require.NoError(t, err)
	assert.False(t, ok, "6th call in the window is rejected")

	ok, err = g.Admit(ctx, "bob", 5, window)
	require.NoError(t, err)
	assert.True(t, ok, "identities are counted separately")

	mr.FastForward(window + time.Second)
	ok, err = g.Admit(ctx, "alice", 5, window)
	require.NoError(t, err)
	assert.True(t, ok, "admitted again after the window elapsed")
}

func TestGovernor_RejectedCallsCount(t *testing.T) {
	g, mr := newRedisGovernor(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := g.Admit(ctx, "carol", 2, time.Minute)
		require.NoError(t, err)
	}
	v, err := mr.Get(CounterKey("carol"))
	require.NoError(t, err)
	assert.Equal(t, "8", v)
	assert.Equal(t, time.Minute, mr.TTL(CounterKey("carol")))
}

func TestGovernor_Validation(t *testing.T) {
	g, _ := newRedisGovernor(t)

	_, err := g.Admit(context.Background(), "x", 0, time.Minute)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = g.Admit(context.Background(), "x", 5, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type failingStore struct{ err error }

func (f failingStore) IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 0, f.err
}

func TestGovernor_StoreFailure(t *testing.T) {
	g := NewGovernor(failingStore{err: errors.New("connection refused")})

	ok, err := g.Admit(context.Background(), "alice", 5, time.Minute)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	g, mr := newRedisGovernor(t)
	mr.Close()
	_, err = g.Admit(context.Background(), "alice", 5, time.Minute)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestCounterKey(t *testing.T) {
	assert.Equal(t, "user:42:requests", CounterKey("42"))
}
