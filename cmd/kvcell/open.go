package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/kvcell"
	"github.com/unkn0wn-root/kvcell/codec"
	asynchook "github.com/unkn0wn-root/kvcell/hooks/async"
	kvlogrus "github.com/unkn0wn-root/kvcell/log/logrus"
	kvslog "github.com/unkn0wn-root/kvcell/log/slog"
	kvzap "github.com/unkn0wn-root/kvcell/log/zap"
	"github.com/unkn0wn-root/kvcell/notify"
	pr "github.com/unkn0wn-root/kvcell/provider"
	"github.com/unkn0wn-root/kvcell/provider/bigcache"
	"github.com/unkn0wn-root/kvcell/provider/memory"
	kvredis "github.com/unkn0wn-root/kvcell/provider/redis"
	"github.com/unkn0wn-root/kvcell/provider/ristretto"
	"github.com/unkn0wn-root/kvcell/provider/sqlite"
	"github.com/unkn0wn-root/kvcell/revstore"
	"github.com/unkn0wn-root/kvcell/sloghooks"
)

// env is everything a store command needs, opened from flags and config.
type env struct {
	v        *viper.Viper
	rdb      *goredis.Client
	provider pr.Provider
	bus      notify.Bus
	revs     revstore.RevStore
	format   codec.Format
	log      kvcell.Logger
	hooks    *asynchook.Hooks
	sync     func() error
}

func openEnv(ctx context.Context, v *viper.Viper) (_ *env, err error) {
	e := &env{v: v, sync: func() error { return nil }}
	defer func() {
		if err != nil {
			e.Close(ctx)
		}
	}()

	if e.format, err = codec.FormatByName(v.GetString("format")); err != nil {
		return nil, err
	}
	if err = e.openLogger(); err != nil {
		return nil, err
	}
	e.hooks = asynchook.New(sloghooks.New(slog.Default(), sloghooks.Options{}), 1, 256)

	if v.GetString("provider") == "redis" || v.GetString("bus") == "redis" {
		e.rdb = goredis.NewClient(&goredis.Options{
			Addr:     v.GetString("redis-addr"),
			Password: v.GetString("redis-password"),
			DB:       v.GetInt("redis-db"),
		})
		if err = e.rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis %s: %w", v.GetString("redis-addr"), err)
		}
	}

	p, err := e.openProvider(ctx)
	if err != nil {
		return nil, err
	}
	e.provider = p

	switch bus := v.GetString("bus"); bus {
	case "", "none":
	case "redis":
		rb, err := notify.NewRedis(notify.RedisConfig{
			Client:  e.rdb,
			Channel: v.GetString("channel"),
			OnCorrupt: func(_ []byte, err error) {
				slog.Warn("corrupt change frame", "err", err)
			},
		})
		if err != nil {
			return nil, err
		}
		e.bus = rb
		e.revs = revstore.NewRedis(revstore.RedisConfig{Client: e.rdb, Namespace: rb.Channel()})
	default:
		return nil, fmt.Errorf("unknown bus %q", bus)
	}
	return e, nil
}

func (e *env) openLogger() error {
	switch backend := e.v.GetString("log-backend"); backend {
	case "", "slog":
		e.log = kvslog.Logger{L: slog.Default()}
	case "zap":
		lvl, err := zap.ParseAtomicLevel(e.v.GetString("log-level"))
		if err != nil {
			return fmt.Errorf("zap level: %w", err)
		}
		cfg := zap.NewProductionConfig()
		cfg.Level = lvl
		if e.v.GetString("log-format") == "text" {
			cfg.Encoding = "console"
		}
		l, err := cfg.Build()
		if err != nil {
			return err
		}
		e.log = kvzap.ZapLogger{L: l}
		e.sync = l.Sync
	case "logrus":
		l := logrus.New()
		l.SetOutput(os.Stderr)
		lvl, err := logrus.ParseLevel(e.v.GetString("log-level"))
		if err != nil {
			return fmt.Errorf("logrus level: %w", err)
		}
		l.SetLevel(lvl)
		if e.v.GetString("log-format") == "json" {
			l.SetFormatter(&logrus.JSONFormatter{})
		}
		e.log = kvlogrus.LogrusLogger{E: logrus.NewEntry(l)}
	default:
		return fmt.Errorf("unknown log backend %q", backend)
	}
	return nil
}

func (e *env) openProvider(ctx context.Context) (pr.Provider, error) {
	switch name := e.v.GetString("provider"); name {
	case "memory":
		return memory.New(), nil
	case "", "sqlite":
		return sqlite.Open(ctx, sqlite.Config{
			Path:  e.v.GetString("sqlite-path"),
			Table: e.v.GetString("sqlite-table"),
		})
	case "redis":
		return kvredis.New(kvredis.Config{Client: e.rdb, KeyPrefix: e.v.GetString("redis-key-prefix")})
	case "bigcache":
		return bigcache.New(ctx, bigcache.Config{LifeWindow: e.v.GetDuration("ttl")})
	case "ristretto":
		return ristretto.New(ristretto.DefaultConfig(e.v.GetInt64("max-cost")))
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// cell opens the cell for key with the environment's stack.
func (e *env) cell(ctx context.Context, key string) (*kvcell.Cell[codec.Value], error) {
	return kvcell.NewValue(ctx, key, kvcell.Options[codec.Value]{
		Provider: e.provider,
		Codec:    codec.Tagged{Format: e.format, Strict: e.v.GetBool("strict")},
		Prefix:   e.v.GetString("prefix"),
		NoPrefix: e.v.GetBool("no-prefix"),
		TTL:      e.v.GetDuration("ttl"),
		Notifier: e.bus,
		RevStore: e.revs,
		Logger:   e.log,
		Hooks:    e.hooks,
	})
}

// Close releases everything openEnv acquired, innermost first.
func (e *env) Close(ctx context.Context) {
	if e.bus != nil {
		_ = e.bus.Close(ctx)
	}
	if e.revs != nil {
		_ = e.revs.Close(ctx)
	}
	if e.provider != nil {
		_ = e.provider.Close(ctx)
	}
	if e.rdb != nil {
		_ = e.rdb.Close()
	}
	if e.hooks != nil {
		e.hooks.Close()
	}
	_ = e.sync()
}
