package driver

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWithExpiry increments a fixed-window counter. The expiry is set on the
// first increment and repaired whenever the key is found without a TTL.
var incrWithExpiry = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 or redis.call('PTTL', KEYS[1]) == -1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// RedisDriver serves the result cache and the rate counters.
type RedisDriver struct {
	client *redis.Client
}

// NewRedisDriverWithURL creates a new Redis driver from a URL.
func NewRedisDriverWithURL(url string) (*RedisDriver, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, &DriverError{Op: "NewRedisDriverWithURL", Err: err.Error()}
	}

	return &RedisDriver{client: redis.NewClient(opts)}, nil
}

// NewRedisDriver wraps an existing client.
func NewRedisDriver(client *redis.Client) *RedisDriver {
	return &RedisDriver{client: client}
}

// Client exposes the underlying client for components sharing the connection pool.
func (d *RedisDriver) Client() *redis.Client {
	return d.client
}

func (d *RedisDriver) Close() error {
	return d.client.Close()
}

func (d *RedisDriver) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx).Err(); err != nil {
		return &DriverError{Op: "Ping", Err: err.Error()}
	}
	return nil
}

// Get returns found=false when the key does not exist.
func (d *RedisDriver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := d.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &DriverError{Op: "Get", Err: err.Error()}
	}
	return value, true, nil
}

func (d *RedisDriver) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := d.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return &DriverError{Op: "Set", Err: err.Error()}
	}
	return nil
}

func (d *RedisDriver) IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := incrWithExpiry.Run(ctx, d.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, &DriverError{Op: "IncrWithExpiry", Err: err.Error()}
	}
	return count, nil
}
