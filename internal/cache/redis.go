// Package cache holds the Redis-backed checkout idempotency keys and the public product feed cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mescude1/skinly-ecomm/internal/config"
)

const (
	idempotencyPrefix = "idempotent-key:"
	// FeedKey holds the serialized public product feed.
	FeedKey = "products:feed"

	IdempotencyTTL = 24 * time.Hour
	FeedTTL        = time.Minute
)

// IdempotencyStore claims request keys so a retried checkout is processed once.
type IdempotencyStore interface {
	// Claim reports true the first time key is seen within the TTL.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets a claimed key so the request can be retried after a failure.
	Release(ctx context.Context, key string) error
}

// FeedCache stores the rendered product feed.
type FeedCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, payload []byte) error
	Invalidate(ctx context.Context) error
}

// commander is the subset of *redis.Client used here.
type commander interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis implements IdempotencyStore and FeedCache.
type Redis struct {
	rdb commander
}

var (
	_ IdempotencyStore = (*Redis)(nil)
	_ FeedCache        = (*Redis)(nil)
)

// NewClient dials Redis and verifies the connection.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func New(rdb commander) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, idempotencyPrefix+key, time.Now().Unix(), IdempotencyTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, idempotencyPrefix+key).Err()
}

func (r *Redis) Get(ctx context.Context) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, FeedKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, payload []byte) error {
	return r.rdb.Set(ctx, FeedKey, payload, FeedTTL).Err()
}

func (r *Redis) Invalidate(ctx context.Context) error {
	return r.rdb.Del(ctx, FeedKey).Err()
}
