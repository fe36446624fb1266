package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frozen-seaweed/dtnews/internal/news"
	"github.com/frozen-seaweed/dtnews/internal/recommend"
)

func TestBuildQuery_EmptyProfileKeepsBase(t *testing.T) {
	base := "전기차 OR 배터리"
	if got := BuildQuery(nil, base); got != base {
		t.Errorf("BuildQuery(nil) = %q, want base query unchanged", got)
	}
	if got := BuildQuery(recommend.Profile{}, base); got != base {
		t.Errorf("BuildQuery(empty) = %q, want base query unchanged", got)
	}
}

func TestBuildQuery_TopTokensORdWithBase(t *testing.T) {
	weights := recommend.Profile{"배터리": 1.0, "충전": 0.5}
	got := BuildQuery(weights, "전기차")

	if !strings.HasPrefix(got, "(") || !strings.HasSuffix(got, "OR (전기차)") {
		t.Errorf("query = %q, want (terms) OR (base) shape", got)
	}
	if !strings.Contains(got, "배터리 OR 충전") {
		t.Errorf("query = %q, want tokens in weight order", got)
	}
}

func TestBuildQuery_SynonymFolding(t *testing.T) {
	got := BuildQuery(recommend.Profile{"ev": 1.0}, "뉴스")
	if !strings.Contains(got, "전기차") || strings.Contains(got, "ev") {
		t.Errorf("query = %q, want ev folded to 전기차", got)
	}
}

func TestBuildQuery_QuotesMultiWordTerms(t *testing.T) {
	got := BuildQuery(recommend.Profile{"battery pack": 1.0}, "news")
	if !strings.Contains(got, `"battery pack"`) {
		t.Errorf("query = %q, want multi-word term quoted", got)
	}
}

func TestBuildQuery_CapsAtSixTokens(t *testing.T) {
	weights := recommend.Profile{}
	for _, tok := range []string{"aa", "bb", "cc", "dd", "ee", "ff", "gg", "hh"} {
		weights[tok] = 1.0
	}
	got := BuildQuery(weights, "base")
	if n := strings.Count(got, " OR "); n != 6 {
		// 6 tokens = 5 ORs inside the group + 1 joining the base branch
		t.Errorf("query %q has %d ORs, want 6", got, n)
	}
}

func TestParseCandidates_BareArray(t *testing.T) {
	body := []byte(`[
		{"title": "EV battery news", "summary": "셀 공급 계약", "url": "https://example.com/a"},
		{"headline": "Fallback headline", "description": "desc", "link": "https://example.com/b"},
		{"summary": "no title, dropped"}
	]`)

	got, err := ParseCandidates(body)
	if err != nil {
		t.Fatalf("ParseCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("parsed %d articles, want 2", len(got))
	}
	if got[0].Title != "EV battery news" || got[0].URL != "https://example.com/a" {
		t.Errorf("first article = %+v", got[0])
	}
	if got[1].Title != "Fallback headline" || got[1].Summary != "desc" || got[1].URL != "https://example.com/b" {
		t.Errorf("fallback fields not applied: %+v", got[1])
	}
}

func TestParseCandidates_ItemsWrapper(t *testing.T) {
	body := []byte(`{"items": [{"title": "wrapped", "url": "https://example.com/w"}]}`)

	got, err := ParseCandidates(body)
	if err != nil {
		t.Fatalf("ParseCandidates: %v", err)
	}
	if len(got) != 1 || got[0].Title != "wrapped" {
		t.Errorf("got %+v", got)
	}
}

func TestParseCandidates_Garbage(t *testing.T) {
	if _, err := ParseCandidates([]byte("not json")); err == nil {
		t.Error("expected an error on undecodable body")
	}
}

type stubSource struct {
	name     string
	articles []news.Article
	err      error
}

func (s stubSource) Name() string { return s.name }
func (s stubSource) Fetch(context.Context) ([]news.Article, error) {
	return s.articles, s.err
}

func TestCollect_MergesAndTolerateFailures(t *testing.T) {
	a := news.Article{Title: "shared story", URL: "https://example.com/shared"}
	got := Collect(context.Background(),
		stubSource{name: "one", articles: []news.Article{a, {Title: "only one", URL: "https://example.com/1"}}},
		stubSource{name: "broken", err: errors.New("feed down")},
		stubSource{name: "two", articles: []news.Article{a}},
	)

	if len(got) != 2 {
		t.Fatalf("collected %d articles, want 2 (dedup + failure skipped): %+v", len(got), got)
	}
	if got[0].Title != "shared story" || got[1].Title != "only one" {
		t.Errorf("order not preserved: %+v", got)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	data := "feeds:\n  - https://example.com/rss\n  - https://example.org/feed.xml\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Feeds) != 2 || cfg.Feeds[0] != "https://example.com/rss" {
		t.Errorf("feeds = %v", cfg.Feeds)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
