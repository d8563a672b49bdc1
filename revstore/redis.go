package revstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares per-key revisions across processes and survives restarts.
// Optionally, a TTL is applied to revision keys to bound growth. An expired
// key restarts at 0, so receivers that applied a higher revision drop the
// next few changes until the counter catches up; keep the TTL well above the
// interval between writes.
type Redis struct {
	rdb         redis.UniversalClient
	ns          string        // logical namespace, usually the cell prefix
	ttl         time.Duration // 0 disables expiry
	closeClient bool
}

var _ RevStore = (*Redis)(nil)

type RedisConfig struct {
	Client      redis.UniversalClient
	Namespace   string
	TTL         time.Duration
	CloseClient bool // set true only if this store exclusively owns the client
}

func NewRedis(cfg RedisConfig) *Redis {
	return &Redis{rdb: cfg.Client, ns: cfg.Namespace, ttl: cfg.TTL, closeClient: cfg.CloseClient}
}

func (s *Redis) key(k string) string { return "rev:" + s.ns + ":" + k }

// Current returns the current revision. Missing keys are revision 0.
func (s *Redis) Current(ctx context.Context, storageKey string) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key(storageKey)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis rev parse: %w", err)
	}
	return u, nil
}

// Bump atomically increments the revision and (optionally) refreshes TTL.
// When ttl > 0, INCR + EXPIRE are pipelined in a single round-trip.
func (s *Redis) Bump(ctx context.Context, storageKey string) (uint64, error) {
	k := s.key(storageKey)

	if s.ttl <= 0 {
		v, err := s.rdb.Incr(ctx, k).Result()
		if err != nil {
			return 0, err
		}
		return uint64(v), nil
	}

	var incr *redis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

// Cleanup is not applicable; Redis handles expiry if TTL is set.
func (s *Redis) Cleanup(time.Duration) {}

// Close closes the client only when this store owns it.
func (s *Redis) Close(context.Context) error {
	if !s.closeClient {
		return nil
	}
	if err := s.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
