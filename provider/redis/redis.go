// Package redis is a Provider backed by a shared Redis keyspace, so cells in
// several processes can read one another's writes.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/kvcell/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	keyPrefix   string
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client goredis.UniversalClient
	// KeyPrefix namespaces every key in the Redis keyspace, e.g. "app:".
	// It is applied on top of the cell's own storage key.
	KeyPrefix   string
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, keyPrefix: cfg.KeyPrefix, closeClient: cfg.CloseClient}, nil
}

func (p *Redis) k(key string) string { return p.keyPrefix + key }

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, p.k(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0 // no expiry
	}
	if err := p.rdb.Set(ctx, p.k(key), value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, p.k(key)).Err()
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
