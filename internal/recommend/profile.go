package recommend

import "github.com/frozen-seaweed/dtnews/internal/news"

// Profile maps a token to an interest weight in (0,1]. An empty profile
// means "no personalization signal yet" and is a valid state, not an error:
// scoring against it yields all zeros and callers should keep the original
// candidate order instead of presenting a meaningless ranking.
type Profile = map[string]float64

// BuildWeights learns a token-weight profile from liked articles. Each
// article contributes every distinct token of its title+summary exactly once;
// counts are then min-max normalized so the most frequent token has weight
// 1.0. The result does not depend on article order. An empty input returns
// an empty profile.
func BuildWeights(liked []news.Article) Profile {
	counts := make(map[string]int)
	for _, a := range liked {
		for _, t := range distinctTokens(a.Text()) {
			counts[t]++
		}
	}

	// Floor of 1 guards the empty input and keeps all weights <= 1.0.
	max := 1
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	weights := make(Profile, len(counts))
	for t, c := range counts {
		weights[t] = float64(c) / float64(max)
	}
	return weights
}

// TopTokens returns up to n (token, weight) pairs ordered by descending
// weight. Ties are broken by token so the output is deterministic.
func TopTokens(weights Profile, n int) []WeightedToken {
	ranked := make([]WeightedToken, 0, len(weights))
	for t, w := range weights {
		ranked = append(ranked, WeightedToken{Token: t, Weight: w})
	}
	sortWeightedTokens(ranked)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// WeightedToken is a profile entry in reportable form.
type WeightedToken struct {
	Token  string  `json:"token"`
	Weight float64 `json:"weight"`
}
