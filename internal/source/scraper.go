package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/news"
)

// maxSummaryRunes caps scraped summaries; tokenization does not benefit from
// full article bodies.
const maxSummaryRunes = 400

// Enricher fills in missing summaries by fetching the article page and
// pulling the meta description or the first paragraph. Scraping is best
// effort: a failed page just leaves the summary empty.
type Enricher struct {
	http        *http.Client
	maxArticles int
}

// NewEnricher builds an enricher that scrapes at most maxArticles pages per
// run.
func NewEnricher(timeout time.Duration, maxArticles int) *Enricher {
	return &Enricher{
		http:        &http.Client{Timeout: timeout},
		maxArticles: maxArticles,
	}
}

// Enrich returns the articles with missing summaries filled in where
// scraping succeeded. The input slice is not modified.
func (e *Enricher) Enrich(ctx context.Context, articles []news.Article) []news.Article {
	out := make([]news.Article, len(articles))
	copy(out, articles)

	scraped := 0
	for i := range out {
		if out[i].Summary != "" || out[i].URL == "" {
			continue
		}
		if scraped >= e.maxArticles {
			break
		}
		summary, err := e.scrapeSummary(ctx, out[i].URL)
		if err != nil {
			logger.Debug("summary scrape failed", "url", out[i].URL, "error", err)
			continue
		}
		out[i].Summary = summary
		scraped++
	}
	return out
}

func (e *Enricher) scrapeSummary(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build page request: %w", err)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("load page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	summary := extractSummary(doc)
	if summary == "" {
		return "", fmt.Errorf("no summary found")
	}
	return summary, nil
}

func extractSummary(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if s := clampSummary(content); s != "" {
			return s
		}
	}
	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if s := clampSummary(content); s != "" {
			return s
		}
	}

	var first string
	doc.Find("article p, p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if len([]rune(text)) >= 40 {
			first = text
			return false
		}
		return true
	})
	return clampSummary(first)
}

func clampSummary(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > maxSummaryRunes {
		s = string(runes[:maxSummaryRunes])
	}
	return s
}
