// Package digest is the orchestration layer on top of the recommendation
// core: it collects likes over day windows, builds or reuses profiles,
// ranks candidates and hands the winners to the messaging channel.
package digest

import (
	"context"
	"fmt"
	"sort"

	"github.com/frozen-seaweed/dtnews/internal/kst"
	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/metrics"
	"github.com/frozen-seaweed/dtnews/internal/news"
	"github.com/frozen-seaweed/dtnews/internal/recommend"
	"github.com/frozen-seaweed/dtnews/internal/sentcache"
	"github.com/frozen-seaweed/dtnews/internal/store"
)

// Sender delivers text and articles to a chat or channel. The Telegram
// client implements it; tests swap in a recorder.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text string) error
	SendArticle(ctx context.Context, chatID string, a news.Article) error
}

// Candidates supplies the current candidate articles, already deduplicated.
type Candidates func(ctx context.Context) []news.Article

// forwardTopCount is how many of yesterday's most-liked articles get
// forwarded.
const forwardTopCount = 4

// Service wires the stores, the sender and the clock together.
type Service struct {
	likes      *store.LikeStore
	profiles   *store.ProfileStore
	sender     Sender
	sent       sentcache.Cache
	clock      *kst.Clock
	candidates Candidates
	topN       int
}

// New builds the orchestration service. sent may be nil when resend
// protection is not wanted (personalized sends re-rank on every call).
func New(likes *store.LikeStore, profiles *store.ProfileStore, sender Sender, sent sentcache.Cache, clock *kst.Clock, candidates Candidates, topN int) *Service {
	return &Service{
		likes:      likes,
		profiles:   profiles,
		sender:     sender,
		sent:       sent,
		clock:      clock,
		candidates: candidates,
		topN:       topN,
	}
}

// SaveLike records a like for today's KST day.
func (s *Service) SaveLike(ctx context.Context, userID string, a news.Article) error {
	if err := s.likes.SaveLike(ctx, userID, s.clock.Day(0), a); err != nil {
		return err
	}
	metrics.Global.IncrementLikesSaved()
	return nil
}

// collectUserLikes gathers one user's likes over the last days KST days,
// today included.
func (s *Service) collectUserLikes(ctx context.Context, userID string, days int) ([]news.Article, error) {
	var liked []news.Article
	for _, day := range s.clock.Days(0, days) {
		items, err := s.likes.LikesByDay(ctx, userID, day)
		if err != nil {
			return nil, err
		}
		liked = append(liked, items...)
	}
	return liked, nil
}

// collectChannelLikes gathers every user's likes over the last days KST
// days, starting yesterday so a partially collected today never skews the
// channel profile.
func (s *Service) collectChannelLikes(ctx context.Context, days int) ([]news.Article, error) {
	var liked []news.Article
	for _, day := range s.clock.Days(1, days) {
		items, err := s.likes.AllLikesByDay(ctx, day)
		if err != nil {
			return nil, err
		}
		liked = append(liked, items...)
	}
	return liked, nil
}

// ProfileSource says where a ranking's weights came from.
type ProfileSource string

const (
	ProfileSaved ProfileSource = "saved"
	ProfileBuilt ProfileSource = "built_from_likes"
	ProfileNone  ProfileSource = "none"
)

// UserWeights returns the user's profile, preferring the cached one and
// falling back to building from the like history (and caching the result).
// A user with no cached profile and no likes gets an empty profile and
// ProfileNone.
func (s *Service) UserWeights(ctx context.Context, userID string, days int) (recommend.Profile, ProfileSource, error) {
	weights, err := s.profiles.UserProfile(ctx, userID)
	if err != nil {
		return nil, ProfileNone, err
	}
	if len(weights) > 0 {
		return weights, ProfileSaved, nil
	}

	liked, err := s.collectUserLikes(ctx, userID, days)
	if err != nil {
		return nil, ProfileNone, err
	}
	if len(liked) == 0 {
		return recommend.Profile{}, ProfileNone, nil
	}

	weights = recommend.BuildWeights(liked)
	metrics.Global.IncrementProfilesBuilt()
	if err := s.profiles.SaveUserProfile(ctx, userID, weights); err != nil {
		return nil, ProfileNone, err
	}
	return weights, ProfileBuilt, nil
}

// Ranking is the result of ranking candidates for a user.
type Ranking struct {
	Articles []recommend.Scored
	Source   ProfileSource
}

// Rank scores the given candidates against the user's profile. With an
// empty profile all scores are zero and the candidate order is preserved.
func (s *Service) Rank(ctx context.Context, userID string, candidates []news.Article, days, topN int) (Ranking, error) {
	weights, src, err := s.UserWeights(ctx, userID, days)
	if err != nil {
		return Ranking{}, err
	}

	ranked := recommend.ScoreArticles(candidates, weights)
	metrics.Global.AddArticlesScored(len(ranked))
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return Ranking{Articles: ranked, Source: src}, nil
}

// Train rebuilds a user's profile from the like history and caches it.
// Returns the number of likes used; zero means nothing was trained or saved.
func (s *Service) Train(ctx context.Context, userID string, days int) (int, recommend.Profile, error) {
	liked, err := s.collectUserLikes(ctx, userID, days)
	if err != nil {
		return 0, nil, err
	}
	if len(liked) == 0 {
		return 0, recommend.Profile{}, nil
	}

	weights := recommend.BuildWeights(liked)
	metrics.Global.IncrementProfilesBuilt()
	if err := s.profiles.SaveUserProfile(ctx, userID, weights); err != nil {
		return 0, nil, err
	}
	return len(liked), weights, nil
}

// ProfileReport builds a profile from the like history without touching the
// cache. Used for inspection endpoints.
func (s *Service) ProfileReport(ctx context.Context, userID string, days int) (int, recommend.Profile, error) {
	liked, err := s.collectUserLikes(ctx, userID, days)
	if err != nil {
		return 0, nil, err
	}
	return len(liked), recommend.BuildWeights(liked), nil
}

// CurrentCandidates fetches the candidate articles from the configured
// sources.
func (s *Service) CurrentCandidates(ctx context.Context) []news.Article {
	candidates := s.candidates(ctx)
	metrics.Global.AddCandidatesFetched(len(candidates))
	return candidates
}

// SendPersonalized ranks the current candidates for the user and sends the
// top N to the chat, preceded by a short header. Returns how many messages
// went out.
func (s *Service) SendPersonalized(ctx context.Context, userID, chatID string, days, topN int) (int, error) {
	candidates := s.candidates(ctx)
	metrics.Global.AddCandidatesFetched(len(candidates))
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no candidates available")
	}

	ranking, err := s.Rank(ctx, userID, candidates, days, topN)
	if err != nil {
		return 0, err
	}
	if ranking.Source == ProfileNone {
		logger.Info("no personalization signal yet", "user", userID)
	}

	header := fmt.Sprintf("📬 개인화 추천 (최근 %d일 좋아요 기반)", days)
	if err := s.sender.SendMessage(ctx, chatID, header); err != nil {
		metrics.Global.IncrementSendFailures()
		return 0, err
	}
	metrics.Global.IncrementMessagesSent()

	sent := 1
	for _, a := range ranking.Articles {
		if err := s.sender.SendArticle(ctx, chatID, a.Article); err != nil {
			metrics.Global.IncrementSendFailures()
			return sent, err
		}
		metrics.Global.IncrementMessagesSent()
		sent++
	}
	return sent, nil
}

// SendChannelDigest learns weights from all users' recent likes, ranks the
// current candidates and posts the top N to the channel. With no likes yet
// the candidates go out in their original (already prioritized) order.
// Articles remembered by the sent cache are skipped.
func (s *Service) SendChannelDigest(ctx context.Context, chatID string, days int) error {
	candidates := s.candidates(ctx)
	metrics.Global.AddCandidatesFetched(len(candidates))
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates available")
	}

	liked, err := s.collectChannelLikes(ctx, days)
	if err != nil {
		return err
	}

	weights := recommend.BuildWeights(liked)
	ordered := candidates
	if len(weights) > 0 {
		metrics.Global.IncrementProfilesBuilt()
		scored := recommend.ScoreArticles(candidates, weights)
		metrics.Global.AddArticlesScored(len(scored))
		ordered = make([]news.Article, 0, len(scored))
		for _, sc := range scored {
			ordered = append(ordered, sc.Article)
		}
	}

	picked := make([]news.Article, 0, s.topN)
	for _, a := range ordered {
		if len(picked) >= s.topN {
			break
		}
		if s.sent != nil && s.sent.IsSent(ctx, sentcache.Hash(a.Title, a.URL)) {
			continue
		}
		picked = append(picked, a)
	}
	if len(picked) == 0 {
		logger.Info("channel digest: nothing new to send", "day", s.clock.Day(0))
		return nil
	}

	header := fmt.Sprintf("🗞️ DT 아침 뉴스 (%s KST)\n(최근 %d일 좋아요 기반 정렬)", s.clock.Day(0), days)
	if err := s.sender.SendMessage(ctx, chatID, header); err != nil {
		metrics.Global.IncrementSendFailures()
		return err
	}
	metrics.Global.IncrementMessagesSent()

	for _, a := range picked {
		if err := s.sender.SendArticle(ctx, chatID, a); err != nil {
			metrics.Global.IncrementSendFailures()
			return err
		}
		metrics.Global.IncrementMessagesSent()
		if s.sent != nil {
			if err := s.sent.MarkSent(ctx, sentcache.Hash(a.Title, a.URL), a.Title, a.URL); err != nil {
				logger.Warn("failed to record sent article", "title", a.Title, "error", err)
			}
		}
	}

	metrics.Global.SetLastRun()
	return nil
}

// ForwardTopLiked forwards yesterday's most-liked articles (top 4 by like
// count across all users) to the given chat. Individual send failures are
// counted but do not abort the remaining sends.
func (s *Service) ForwardTopLiked(ctx context.Context, chatID string) error {
	day := s.clock.Day(1)
	liked, err := s.likes.AllLikesByDay(ctx, day)
	if err != nil {
		return err
	}

	if len(liked) == 0 {
		if err := s.sender.SendMessage(ctx, chatID, fmt.Sprintf("📭 어제(%s) 좋아요한 기사가 없었습니다.", day)); err != nil {
			metrics.Global.IncrementSendFailures()
			return err
		}
		metrics.Global.IncrementMessagesSent()
		return nil
	}

	top := topLiked(liked, forwardTopCount)

	sent, failed := 0, 0
	if err := s.sender.SendMessage(ctx, chatID, fmt.Sprintf("✅ 어제(%s) 좋아요 TOP%d", day, len(top))); err != nil {
		metrics.Global.IncrementSendFailures()
		failed++
	} else {
		metrics.Global.IncrementMessagesSent()
		sent++
	}

	for _, a := range top {
		if err := s.sender.SendArticle(ctx, chatID, a); err != nil {
			metrics.Global.IncrementSendFailures()
			logger.Warn("forward send failed", "title", a.Title, "error", err)
			failed++
			continue
		}
		metrics.Global.IncrementMessagesSent()
		sent++
	}

	logger.Info("forwarded top liked", "day", day, "top", len(top), "sent", sent, "failed", failed)
	metrics.Global.SetLastRun()
	return nil
}

// topLiked counts likes per article identity and returns the n most-liked
// articles, most likes first. Count ties keep first-seen order.
func topLiked(liked []news.Article, n int) []news.Article {
	type counted struct {
		article news.Article
		count   int
		order   int
	}

	byKey := make(map[string]*counted)
	ordered := make([]*counted, 0)
	for _, a := range liked {
		key := a.Key()
		if key == "" {
			continue
		}
		if c, ok := byKey[key]; ok {
			c.count++
			continue
		}
		c := &counted{article: a, count: 1, order: len(ordered)}
		byKey[key] = c
		ordered = append(ordered, c)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].count > ordered[j].count
	})

	if len(ordered) > n {
		ordered = ordered[:n]
	}
	out := make([]news.Article, 0, len(ordered))
	for _, c := range ordered {
		out = append(out, c.article)
	}
	return out
}
