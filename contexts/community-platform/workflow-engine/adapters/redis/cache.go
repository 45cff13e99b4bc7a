package redisadapter

import (
	"context"
	"errors"
	"time"

	"wikigaia/contexts/community-platform/workflow-engine/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "workflow:view:"

// ViewCache stores composed workflow views in Redis keyed by problem id.
// All failures are surfaced to the caller, which treats them as cache
// misses; the cache is never load-bearing for correctness.
type ViewCache struct {
	client *redis.Client
}

func NewViewCache(client *redis.Client) *ViewCache {
	return &ViewCache{client: client}
}

func (c *ViewCache) Get(ctx context.Context, problemID string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, keyPrefix+problemID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (c *ViewCache) Set(ctx context.Context, problemID string, payload []byte, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+problemID, payload, ttl).Err()
}

func (c *ViewCache) Invalidate(ctx context.Context, problemID string) error {
	return c.client.Del(ctx, keyPrefix+problemID).Err()
}

var _ ports.ViewCache = (*ViewCache)(nil)
