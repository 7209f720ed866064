package driver

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisDriver(t *testing.T) (*RedisDriver, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	d := NewRedisDriver(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = d.Close() })

	return d, mr
}
