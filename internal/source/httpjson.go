package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/frozen-seaweed/dtnews/internal/news"
)

// HTTPJSON fetches candidates from an external URL serving either a bare
// JSON array or an {"items": [...]} wrapper. Field names are forgiving:
// title/headline, summary/description, url/link all work.
type HTTPJSON struct {
	url  string
	http *http.Client
}

// NewHTTPJSON builds the source for the given candidate feed URL.
func NewHTTPJSON(url string, timeout time.Duration) *HTTPJSON {
	return &HTTPJSON{url: url, http: &http.Client{Timeout: timeout}}
}

func (h *HTTPJSON) Name() string { return "httpjson" }

type jsonCandidate struct {
	Title       string `json:"title"`
	Headline    string `json:"headline"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Link        string `json:"link"`
}

func (h *HTTPJSON) Fetch(ctx context.Context) ([]news.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build candidate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("candidate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("candidate feed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read candidate feed: %w", err)
	}

	return ParseCandidates(body)
}

// ParseCandidates decodes a candidate feed body in either supported shape.
func ParseCandidates(body []byte) ([]news.Article, error) {
	var raw []jsonCandidate
	if err := json.Unmarshal(body, &raw); err != nil {
		var wrapper struct {
			Items []jsonCandidate `json:"items"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("decode candidate feed: %w", err)
		}
		raw = wrapper.Items
	}

	articles := make([]news.Article, 0, len(raw))
	for _, c := range raw {
		a := news.Article{Title: c.Title, Summary: c.Summary, URL: c.URL}
		if a.Title == "" {
			a.Title = c.Headline
		}
		if a.Summary == "" {
			a.Summary = c.Description
		}
		if a.URL == "" {
			a.URL = c.Link
		}
		if a.Title == "" {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}
