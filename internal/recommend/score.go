package recommend

import (
	"sort"

	"github.com/frozen-seaweed/dtnews/internal/news"
)

// Scored is a candidate article with its relevance score attached.
type Scored struct {
	news.Article
	Score float64 `json:"_score"`
}

// ScoreArticles ranks candidates against a profile. A candidate's score is
// the sum of profile weights for each distinct token in its title+summary;
// unknown tokens contribute zero, so scores are never negative. The sort is
// stable descending, so equal scores keep the input order — callers often
// pass lists that are already deduplicated and prioritized. The input slice
// is not modified; each result carries a copy of the article.
func ScoreArticles(candidates []news.Article, weights Profile) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for _, a := range candidates {
		var score float64
		for _, t := range distinctTokens(a.Text()) {
			score += weights[t]
		}
		scored = append(scored, Scored{Article: a, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func sortWeightedTokens(ranked []WeightedToken) {
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Token < ranked[j].Token
	})
}
