// Package store persists builder layouts in a key-value backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AngelCh415/zenite-dash/internal/utils"
)

var ErrNotFound = errors.New("key not found")

type KVPair struct {
	Key   string
	Value []byte
}

// KV is the storage contract shared by every backend. Get returns ErrNotFound for missing
// keys; Delete of a missing key is not an error. GetByPrefix returns pairs sorted by key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
	GetByPrefix(ctx context.Context, prefix string) ([]KVPair, error)
	Ping(ctx context.Context) error
	Close() error
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

type Options struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BadgerDir     string
	// Retries bounds the startup ping attempts.
	Retries int
}

// Open builds the configured backend and waits until it answers a ping.
func Open(ctx context.Context, o Options, log *slog.Logger) (KV, error) {
	var (
		kv  KV
		err error
	)
	switch o.Backend {
	case "", BackendMemory:
		kv = NewMemoryKV()
	case BackendRedis:
		kv = NewRedisKV(o.RedisAddr, o.RedisPassword, o.RedisDB)
	case BackendBadger:
		kv, err = OpenBadgerKV(o.BadgerDir)
	default:
		return nil, fmt.Errorf("unknown kv backend %q", o.Backend)
	}
	if err != nil {
		return nil, err
	}
	err = utils.NewBackoff(200*time.Millisecond, o.Retries).Do(ctx, func(i int) error {
		if err := kv.Ping(ctx); err != nil {
			log.Warn("kv ping failed", slog.String("backend", o.Backend), slog.Int("attempt", i+1), slog.String("err", err.Error()))
			return err
		}
		return nil
	})
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("kv %s: %w", o.Backend, err)
	}
	return kv, nil
}
