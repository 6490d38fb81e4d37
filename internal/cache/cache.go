// Package cache provides the byte-oriented backends behind the query memo.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"room-booking-backend/config"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend stores opaque values with a time to live.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// New builds the backend selected by cfg.Backend.
func New(cfg config.CacheConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(cfg.TTL), nil
	case "redis":
		return NewRedis(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
