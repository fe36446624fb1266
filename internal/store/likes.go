package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/news"
)

// scanBatch is the COUNT hint passed to SCAN. Small enough to exercise the
// cursor loop on realistic datasets.
const scanBatch = 100

// LikeStore persists like events per (user, KST day) with automatic expiry.
type LikeStore struct {
	kv KV
}

// NewLikeStore wraps a KV backend.
func NewLikeStore(kv KV) *LikeStore {
	return &LikeStore{kv: kv}
}

// SaveLike appends the article to the user's like list for the given day and
// refreshes the 14-day expiry on the whole list. Either both operations
// succeed or the backend error is returned; no partial-write recovery is
// attempted.
func (s *LikeStore) SaveLike(ctx context.Context, userID, day string, article news.Article) error {
	raw, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("encode like: %w", err)
	}

	key := likeKey(userID, day)
	if err := s.kv.LPush(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("push like %s: %w", key, err)
	}
	if err := s.kv.Expire(ctx, key, LikeTTL); err != nil {
		return fmt.Errorf("set expiry on %s: %w", key, err)
	}
	return nil
}

// LikesByDay returns the user's liked articles for one day, most recently
// liked first. Entries that no longer decode are skipped and logged; one
// corrupt record must not break the rest of the read.
func (s *LikeStore) LikesByDay(ctx context.Context, userID, day string) ([]news.Article, error) {
	key := likeKey(userID, day)
	items, err := s.kv.LRange(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("read likes %s: %w", key, err)
	}
	return decodeLikes(key, items), nil
}

// AllLikesByDay gathers every user's likes for one day by scanning for keys
// matching the day pattern and concatenating their lists. The scan loops
// until the terminal cursor, accumulating all keys before any values are
// fetched; a partial scan is never treated as complete. Each user's sublist
// keeps its head-first order, the order across users is unspecified, and no
// deduplication happens across users. The scan-then-fetch pair is not
// transactional: likes appended between the two phases may or may not show.
func (s *LikeStore) AllLikesByDay(ctx context.Context, day string) ([]news.Article, error) {
	pattern := likePattern(day)

	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.kv.Scan(ctx, cursor, pattern, scanBatch)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", pattern, err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}

	var all []news.Article
	for _, key := range keys {
		items, err := s.kv.LRange(ctx, key, 0, -1)
		if err != nil {
			return nil, fmt.Errorf("read likes %s: %w", key, err)
		}
		all = append(all, decodeLikes(key, items)...)
	}
	return all, nil
}

func decodeLikes(key string, items []string) []news.Article {
	articles := make([]news.Article, 0, len(items))
	for _, raw := range items {
		var a news.Article
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			logger.Warn("skipping corrupt like record", "key", key, "error", err)
			continue
		}
		articles = append(articles, a)
	}
	return articles
}
