// Package sentcache remembers which articles were already delivered so the
// digest never repeats itself. Records expire after a retention window
// (default seven days). Two backends exist: a Redis cache sharing the bot's
// store connection and a JSON file cache for setups without Redis.
package sentcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Cache is the sent-article record. A miss only means the article may be
// sent again, so backends treat read failures as misses rather than
// propagating them into the send path.
type Cache interface {
	IsSent(ctx context.Context, hash string) bool
	MarkSent(ctx context.Context, hash, title, link string) error
}

// Hash derives a stable identity for a delivered article from its
// normalized title and the link's domain.
func Hash(title, link string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	normalized = strings.Join(strings.Fields(normalized), " ")

	h := sha256.New()
	h.Write([]byte(normalized + "|" + extractDomain(link)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func extractDomain(url string) string {
	if url == "" {
		return "unknown"
	}

	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")

	parts := strings.Split(url, "/")
	if len(parts) == 0 || parts[0] == "" {
		return "unknown"
	}

	domain := strings.TrimPrefix(parts[0], "www.")
	return strings.ToLower(domain)
}
