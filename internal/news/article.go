// Package news holds the article value type shared by sourcing, storage and
// recommendation code.
package news

import "strings"

// Article is a single news item. Title is the only required field; Summary
// and URL are filled in when the source provides them.
type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Text returns the text used for tokenization and scoring.
func (a Article) Text() string {
	return a.Title + " " + a.Summary
}

// Key returns the identity used for deduplication: the URL when present,
// otherwise the lowercased, trimmed title.
func (a Article) Key() string {
	if u := strings.TrimSpace(a.URL); u != "" {
		return strings.ToLower(u)
	}
	return strings.ToLower(strings.TrimSpace(a.Title))
}

// NormalizeTitle collapses whitespace and case for title-level duplicate
// detection within a single run.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// Dedupe removes articles that share an identity key or a normalized title,
// keeping the first occurrence. Articles with neither URL nor title are
// dropped.
func Dedupe(articles []Article) []Article {
	seenKeys := make(map[string]struct{}, len(articles))
	seenTitles := make(map[string]struct{}, len(articles))

	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		key := a.Key()
		if key == "" {
			continue
		}
		if _, ok := seenKeys[key]; ok {
			continue
		}
		title := NormalizeTitle(a.Title)
		if title != "" {
			if _, ok := seenTitles[title]; ok {
				continue
			}
			seenTitles[title] = struct{}{}
		}
		seenKeys[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
