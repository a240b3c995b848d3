package cache

import (
	"context"
	"time"
)

// SearchCache holds short-lived JSON payloads for read-heavy endpoints
// (product search, outstanding report). Writes go through Delete on the
// mutating paths.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type NoopSearchCache struct{}

func (NoopSearchCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopSearchCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (NoopSearchCache) Delete(_ context.Context, _ ...string) error {
	return nil
}
