package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process backend.
type Memory struct {
	c *gocache.Cache
}

// NewMemory creates a memory backend whose entries expire after ttl unless a
// per-entry ttl is given.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Memory{c: gocache.New(ttl, 10*time.Minute)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return v.([]byte), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}
