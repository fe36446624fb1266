package sentcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/store"
)

// RedisCache stores sent records as expiring scalar keys on the same KV
// backend as the like store.
type RedisCache struct {
	kv  store.KV
	ttl time.Duration
}

// NewRedisCache wraps the shared KV backend.
func NewRedisCache(kv store.KV, ttlHours int) *RedisCache {
	return &RedisCache{kv: kv, ttl: time.Duration(ttlHours) * time.Hour}
}

func sentKey(hash string) string {
	return "sent:" + hash
}

// IsSent reports whether the hash was recorded within the retention window.
// A store failure counts as a miss: resending an article is preferable to
// dropping the whole digest.
func (rc *RedisCache) IsSent(ctx context.Context, hash string) bool {
	_, err := rc.kv.Get(ctx, sentKey(hash))
	if err == nil {
		return true
	}
	if !errors.Is(err, store.ErrNotFound) {
		logger.Warn("sent cache read failed", "hash", hash, "error", err)
	}
	return false
}

// MarkSent records the hash with the retention TTL.
func (rc *RedisCache) MarkSent(ctx context.Context, hash, title, link string) error {
	key := sentKey(hash)
	if err := rc.kv.Set(ctx, key, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record sent article: %w", err)
	}
	if err := rc.kv.Expire(ctx, key, rc.ttl); err != nil {
		return fmt.Errorf("expire sent record: %w", err)
	}
	return nil
}
