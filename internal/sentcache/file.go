package sentcache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// SentItem is one delivered-article record in the file backend.
type SentItem struct {
	Hash   string    `json:"hash"`
	Title  string    `json:"title"`
	Link   string    `json:"link"`
	SentAt time.Time `json:"sent_at"`
}

// FileCache keeps sent records in a JSON file. Suited to single-instance
// deployments; the Redis backend is preferred when the store is available.
type FileCache struct {
	filePath string
	ttl      time.Duration
	items    map[string]SentItem
	mu       sync.RWMutex
}

// NewFileCache creates a file cache; call Load before first use.
func NewFileCache(filePath string, ttlHours int) *FileCache {
	return &FileCache{
		filePath: filePath,
		ttl:      time.Duration(ttlHours) * time.Hour,
		items:    make(map[string]SentItem),
	}
}

// Load reads the cache file, dropping records older than the retention
// window. A missing or empty file starts an empty cache.
func (fc *FileCache) Load() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	data, err := os.ReadFile(fc.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read sent cache: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items []SentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode sent cache: %w", err)
	}

	cutoff := time.Now().Add(-fc.ttl)
	for _, item := range items {
		if item.SentAt.After(cutoff) {
			fc.items[item.Hash] = item
		}
	}
	return nil
}

// Save writes the current records back to disk.
func (fc *FileCache) Save() error {
	fc.mu.RLock()
	items := make([]SentItem, 0, len(fc.items))
	for _, item := range fc.items {
		items = append(items, item)
	}
	fc.mu.RUnlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sent cache: %w", err)
	}
	if err := os.WriteFile(fc.filePath, data, 0644); err != nil {
		return fmt.Errorf("write sent cache: %w", err)
	}
	return nil
}

func (fc *FileCache) IsSent(_ context.Context, hash string) bool {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	item, exists := fc.items[hash]
	if !exists {
		return false
	}
	return item.SentAt.After(time.Now().Add(-fc.ttl))
}

func (fc *FileCache) MarkSent(_ context.Context, hash, title, link string) error {
	fc.mu.Lock()
	fc.items[hash] = SentItem{
		Hash:   hash,
		Title:  title,
		Link:   link,
		SentAt: time.Now(),
	}
	fc.mu.Unlock()

	return fc.Save()
}
