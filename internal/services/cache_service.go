package services

import (
	"context"
	"time"
)

// CacheService is the slice of the Redis cache the rest of the code
// depends on: short-TTL read caching for the trip catalog, SetNX claims
// for publish idempotency keys and windowed counters for rate limiting.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	DeletePattern(ctx context.Context, pattern string) error
	Ping(ctx context.Context) error
}
