package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"room-booking-backend/config"
)

// Redis is a backend shared between processes.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedis connects to the server described by cfg. URI wins over Addr.
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	var opt *redis.Options
	if cfg.URI != "" {
		parsed, err := redis.ParseURL(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URI: %w", err)
		}
		if parsed.DB == 0 {
			parsed.DB = cfg.DB
		}
		if parsed.Password == "" && cfg.Password != "" {
			parsed.Password = cfg.Password
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: client, keyPrefix: cfg.KeyPrefix}, nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(k string) string {
	return r.keyPrefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}
