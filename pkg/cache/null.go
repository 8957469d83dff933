package cache

import (
	"context"
	"time"
)

// NullCache stores nothing: every scan walks its source again and every
// render reruns its sink. It serves --no-cache, the "none" backend and
// machines without a usable cache directory.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache {
	return &NullCache{}
}

func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear removes nothing, so `treemap cache clear` reports 0.
func (c *NullCache) Clear(ctx context.Context) (int, error) {
	return 0, nil
}

func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
