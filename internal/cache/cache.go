// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores research responses by key with a time-to-live. The
// research service owns a Cache and passes it to nothing else.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// DefaultTTL is how long a response stays cached when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-valued TTL cache. Get reports a miss with ok=false and a
// nil error; errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by caches backed by a remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks c's backing store when it has one.
func Ping(ctx context.Context, c Cache) error {
	if p, ok := c.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// New builds the cache selected by cfg. An unknown backend is an error.
func New(cfg types.CacheConfig) (Cache, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	switch cfg.Backend {
	case types.CacheMemory, "":
		return NewMemory(ttl), nil
	case types.CacheRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache: redis_addr is required")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedis(client, cfg.Prefix, ttl), nil
	case types.CacheNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Nop never stores anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards value.
func (Nop) Set(context.Context, string, []byte) error { return nil }
