// Package store persists like events and user profiles in a key-value
// backend. Likes live in per-(user, day) lists under "likes:<user>:<day>"
// with a 14-day expiry; profiles are flat JSON mappings under "kw:<user>".
// Day keys are opaque caller-supplied strings (see internal/kst).
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KV.Get when the key does not exist. It marks a
// cache miss, not a backend failure; every other error means the store is
// unavailable and must propagate to the caller untouched.
var ErrNotFound = errors.New("store: key not found")

// LikeTTL is how long a (user, day) like list is retained. Every write
// refreshes it, so later likes on the same day keep earlier ones alive
// longer. Expired likes are unrecoverable; this bounds memory on purpose.
const LikeTTL = 14 * 24 * time.Hour

// KV is the minimal key-value contract the stores need. List pushes and
// scalar sets must be atomic per key; no application-level locking is done
// on top of it. The implementation in redis.go normalizes the scan cursor
// to uint64, with 0 as the terminal value.
type KV interface {
	LPush(ctx context.Context, key string, value string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Scan(ctx context.Context, cursor uint64, match string, count int64) (keys []string, next uint64, err error)
}

func likeKey(userID, day string) string {
	return "likes:" + userID + ":" + day
}

func likePattern(day string) string {
	return "likes:*:" + day
}

func profileKey(userID string) string {
	return "kw:" + userID
}
