package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frozen-seaweed/dtnews/internal/news"
	"github.com/frozen-seaweed/dtnews/internal/recommend"
)

const newsAPIEndpoint = "https://newsapi.org/v2/everything"

// recencyWindow limits NewsAPI results to recent articles.
const recencyWindow = 36 * time.Hour

// synonyms folds learned tokens onto the forms that search better in Korean
// news coverage.
var synonyms = map[string]string{
	"ev": "전기차",
	"벤츠":  "메르세데스",
}

// NewsAPI queries newsapi.org with a query derived from the current channel
// profile: the top learned keywords OR'd with a static base query, so the
// feed drifts toward what readers actually like.
type NewsAPI struct {
	apiKey    string
	baseQuery string
	http      *http.Client

	// profile supplies the current weights; nil means base query only.
	profile func(ctx context.Context) recommend.Profile
}

// NewNewsAPI builds the source. profileFn may be nil.
func NewNewsAPI(apiKey, baseQuery string, timeout time.Duration, profileFn func(ctx context.Context) recommend.Profile) *NewsAPI {
	return &NewsAPI{
		apiKey:    apiKey,
		baseQuery: baseQuery,
		http:      &http.Client{Timeout: timeout},
		profile:   profileFn,
	}
}

func (n *NewsAPI) Name() string { return "newsapi" }

func (n *NewsAPI) Fetch(ctx context.Context) ([]news.Article, error) {
	var weights recommend.Profile
	if n.profile != nil {
		weights = n.profile(ctx)
	}
	query := BuildQuery(weights, n.baseQuery)
	since := time.Now().UTC().Add(-recencyWindow).Format("2006-01-02T15:04:05") + "Z"

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "ko")
	params.Set("pageSize", "20")
	params.Set("sortBy", "publishedAt")
	params.Set("from", since)
	params.Set("apiKey", n.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build newsapi request: %w", err)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi: status %d", resp.StatusCode)
	}

	var payload struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}

	articles := make([]news.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if a.Title == "" {
			continue
		}
		articles = append(articles, news.Article{
			Title:   a.Title,
			Summary: a.Description,
			URL:     a.URL,
		})
	}
	return articles, nil
}

// BuildQuery assembles the NewsAPI query. The top six profile tokens are
// synonym-folded, quoted when multi-word and OR'd together, then combined
// with the base query as a fallback branch. An empty profile returns the
// base query unchanged.
func BuildQuery(weights recommend.Profile, baseQuery string) string {
	top := recommend.TopTokens(weights, 6)

	terms := make([]string, 0, len(top))
	for _, wt := range top {
		term := strings.TrimSpace(wt.Token)
		if term == "" {
			continue
		}
		if mapped, ok := synonyms[strings.ToLower(term)]; ok {
			term = mapped
		}
		if strings.Contains(term, " ") {
			term = `"` + term + `"`
		}
		terms = append(terms, term)
	}

	if len(terms) == 0 {
		return baseQuery
	}
	return "(" + strings.Join(terms, " OR ") + ") OR (" + baseQuery + ")"
}
