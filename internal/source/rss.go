package source

import (
	"context"

	"github.com/mmcdole/gofeed"

	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/news"
)

// RSS pulls candidates from a list of feeds. One broken feed is logged and
// skipped, never fatal.
type RSS struct {
	feeds  []string
	parser *gofeed.Parser
}

// NewRSS builds the source from the configured feed URLs.
func NewRSS(feeds []string) *RSS {
	return &RSS{feeds: feeds, parser: gofeed.NewParser()}
}

func (r *RSS) Name() string { return "rss" }

func (r *RSS) Fetch(ctx context.Context) ([]news.Article, error) {
	var all []news.Article
	okCount := 0

	for _, feedURL := range r.feeds {
		feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.Warn("rss feed failed", "url", feedURL, "error", err)
			continue
		}
		for _, item := range feed.Items {
			if item.Title == "" {
				continue
			}
			all = append(all, news.Article{
				Title:   item.Title,
				Summary: item.Description,
				URL:     item.Link,
			})
		}
		okCount++
	}

	logger.Debug("rss feeds processed", "ok", okCount, "total", len(r.feeds))
	return all, nil
}
