// Package source collects candidate articles for ranking. Candidates come
// from NewsAPI, RSS feeds and an optional external JSON feed; origins are
// interchangeable behind the Source interface and a failing origin never
// aborts a run.
package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/news"
)

// Source supplies raw candidate articles from one origin.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]news.Article, error)
}

// Config is the YAML sources file.
//
// feeds:
//   - https://example.com/rss
type Config struct {
	Feeds []string `yaml:"feeds"`
}

// LoadConfig reads the RSS feed list from a YAML file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode sources config: %w", err)
	}
	return &cfg, nil
}

// Collect fetches from every source and returns the deduplicated union.
// Per-source failures are logged and skipped; the run continues with
// whatever the remaining origins produced.
func Collect(ctx context.Context, sources ...Source) []news.Article {
	var all []news.Article
	okCount := 0

	for _, src := range sources {
		items, err := src.Fetch(ctx)
		if err != nil {
			logger.Warn("source fetch failed", "source", src.Name(), "error", err)
			continue
		}
		logger.Info("fetched candidates", "source", src.Name(), "count", len(items))
		all = append(all, items...)
		okCount++
	}

	logger.Info("candidate sources done", "ok", okCount, "total", len(sources))
	return news.Dedupe(all)
}
