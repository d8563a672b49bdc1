package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/kvcell/internal/wire"
)

// DefaultChannel is used when RedisConfig.Channel is empty.
const DefaultChannel = "default"

type RedisConfig struct {
	Client redis.UniversalClient
	// Channel names the pub/sub channel as "kvcell:<Channel>". Cells that
	// should see each other's writes must use the same channel.
	Channel string
	// OnCorrupt is called with frames that fail to decode. Optional.
	OnCorrupt   func(payload []byte, err error)
	CloseClient bool // set true only if this bus exclusively owns the client
}

// Redis is a bus over Redis pub/sub. Changes are framed with internal/wire.
// Delivery is at-most-once: subscribers that are disconnected miss changes
// and should Reload.
type Redis struct {
	rdb         redis.UniversalClient
	channel     string
	onCorrupt   func([]byte, error)
	closeClient bool

	mu     sync.Mutex
	subs   map[*redisSub]struct{}
	closed bool
}

var _ Bus = (*Redis)(nil)

var ErrNilClient = errors.New("notify: nil redis client")

func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	ch := cfg.Channel
	if ch == "" {
		ch = DefaultChannel
	}
	return &Redis{
		rdb:         cfg.Client,
		channel:     "kvcell:" + ch,
		onCorrupt:   cfg.OnCorrupt,
		closeClient: cfg.CloseClient,
		subs:        make(map[*redisSub]struct{}),
	}, nil
}

// Channel returns the full pub/sub channel name.
func (b *Redis) Channel() string { return b.channel }

func (b *Redis) Publish(ctx context.Context, c Change) error {
	frame, err := wire.EncodeChange(wire.Frame{
		Key:     c.Key,
		Origin:  c.Origin,
		Rev:     c.Rev,
		Deleted: c.Deleted,
		Value:   c.Value,
	})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, frame).Err()
}

type redisSub struct {
	ps   *redis.PubSub
	done chan struct{}
	once sync.Once
}

func (s *redisSub) stop() {
	s.once.Do(func() {
		_ = s.ps.Close()
		<-s.done
	})
}

// Subscribe waits for the subscription to be confirmed, then delivers
// changes on a dedicated goroutine until stop or Close. stop waits for that
// goroutine, so it must not be called from inside h.
func (b *Redis) Subscribe(ctx context.Context, h Handler) (func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	b.mu.Unlock()

	ps := b.rdb.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	s := &redisSub{ps: ps, done: make(chan struct{})}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = ps.Close()
		return nil, ErrClosed
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer close(s.done)
		for msg := range ps.Channel() {
			f, err := wire.DecodeChange([]byte(msg.Payload))
			if err != nil {
				if b.onCorrupt != nil {
					b.onCorrupt([]byte(msg.Payload), err)
				}
				continue
			}
			h(Change{Key: f.Key, Value: f.Value, Deleted: f.Deleted, Origin: f.Origin, Rev: f.Rev})
		}
	}()

	return func() {
		s.stop()
		b.mu.Lock()
		delete(b.subs, s)
		b.mu.Unlock()
	}, nil
}

// Close ends every subscription and closes the client if this bus owns it.
func (b *Redis) Close(context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for s := range subs {
		s.stop()
	}
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
	}
	return nil
}
