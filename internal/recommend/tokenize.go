// Package recommend implements the content-based recommendation core: it
// learns token weights from liked articles and ranks new candidates against
// them. All functions here are pure; storage lives in internal/store.
package recommend

import (
	"strings"
	"unicode"
)

// stopwords are common English function words excluded from profiles and
// scoring. The set is deliberately small and fixed; tokens in other
// languages pass through untouched apart from case folding.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "as": {}, "it": {}, "that": {}, "this": {},
}

// Tokenize lowercases the text, replaces every rune that is not a letter,
// digit or whitespace with a space, splits on whitespace and drops empty
// strings and stopwords. Duplicates are kept; callers decide whether token
// presence or frequency matters. No stemming, no language detection.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)

	runes := make([]rune, 0, len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			runes = append(runes, r)
		} else {
			runes = append(runes, ' ')
		}
	}

	words := strings.Fields(string(runes))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopwords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// distinctTokens tokenizes text and keeps each token once, in first-seen
// order. Both profile building and scoring work on article-level token
// presence so a repeated word cannot dominate.
func distinctTokens(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
