package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/frozen-seaweed/dtnews/internal/api"
	"github.com/frozen-seaweed/dtnews/internal/config"
	"github.com/frozen-seaweed/dtnews/internal/digest"
	"github.com/frozen-seaweed/dtnews/internal/kst"
	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/news"
	"github.com/frozen-seaweed/dtnews/internal/recommend"
	"github.com/frozen-seaweed/dtnews/internal/retry"
	"github.com/frozen-seaweed/dtnews/internal/sentcache"
	"github.com/frozen-seaweed/dtnews/internal/source"
	"github.com/frozen-seaweed/dtnews/internal/store"
	"github.com/frozen-seaweed/dtnews/internal/telegram"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Init(cfg.Debug)

	ctx := context.Background()

	kv, err := store.NewRedis(ctx, store.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		log.Fatal(err)
	}
	defer kv.Close()

	likes := store.NewLikeStore(kv)
	profiles := store.NewProfileStore(kv)
	clock := kst.NewClock()

	sent := buildSentCache(cfg, kv)

	tg := telegram.NewClient(cfg.TelegramToken, cfg.RequestTimeout, retry.Policy{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	})

	candidates := buildCandidates(cfg, likes, clock)

	svc := digest.New(likes, profiles, tg, sent, clock, candidates, cfg.TopN)

	startCron(cfg, svc)

	server := api.NewServer(svc, tg, cfg)
	logger.Info("starting HTTP server", "port", cfg.HTTPPort)
	if err := server.Router().Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("http server: %v", err)
	}
}

// buildSentCache picks the configured resend-protection backend.
func buildSentCache(cfg *config.Config, kv store.KV) sentcache.Cache {
	if cfg.SentCacheBackend == "file" {
		fc := sentcache.NewFileCache(cfg.SentCacheFilePath, cfg.SentCacheTTLHours)
		if err := fc.Load(); err != nil {
			logger.Warn("sent cache load failed, starting empty", "error", err)
		}
		return fc
	}
	return sentcache.NewRedisCache(kv, cfg.SentCacheTTLHours)
}

// buildCandidates assembles the candidate pipeline from the configured
// origins. The NewsAPI query follows the channel-wide profile learned from
// yesterday's likes backwards.
func buildCandidates(cfg *config.Config, likes *store.LikeStore, clock *kst.Clock) digest.Candidates {
	var sources []source.Source

	if cfg.NewsAPIKey != "" {
		profileFn := func(ctx context.Context) recommend.Profile {
			var liked []news.Article
			for _, day := range clock.Days(1, cfg.ChannelWindowDays) {
				items, err := likes.AllLikesByDay(ctx, day)
				if err != nil {
					logger.Warn("like collection for query building failed", "day", day, "error", err)
					return recommend.Profile{}
				}
				liked = append(liked, items...)
			}
			return recommend.BuildWeights(liked)
		}
		sources = append(sources, source.NewNewsAPI(cfg.NewsAPIKey, cfg.NewsAPIQuery, cfg.RequestTimeout, profileFn))
	}

	if feeds, err := source.LoadConfig(cfg.SourcesConfigPath); err != nil {
		logger.Warn("sources config not loaded", "path", cfg.SourcesConfigPath, "error", err)
	} else if len(feeds.Feeds) > 0 {
		sources = append(sources, source.NewRSS(feeds.Feeds))
	}

	if cfg.NewsSourceURL != "" {
		sources = append(sources, source.NewHTTPJSON(cfg.NewsSourceURL, cfg.RequestTimeout))
	}

	enricher := source.NewEnricher(15*time.Second, 10)

	return func(ctx context.Context) []news.Article {
		collected := source.Collect(ctx, sources...)
		return enricher.Enrich(ctx, collected)
	}
}

// startCron schedules the channel digest and the liked-articles forward in
// KST.
func startCron(cfg *config.Config, svc *digest.Service) {
	c := cron.New(cron.WithLocation(kst.Zone))

	if _, err := c.AddFunc(cfg.DigestCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := svc.SendChannelDigest(ctx, cfg.ChannelChatID, cfg.ChannelWindowDays); err != nil {
			logger.Error("channel digest failed", "error", err)
		}
	}); err != nil {
		log.Fatalf("digest cron %q: %v", cfg.DigestCron, err)
	}

	if cfg.ForwardChatID != "" {
		if _, err := c.AddFunc(cfg.ForwardCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := svc.ForwardTopLiked(ctx, cfg.ForwardChatID); err != nil {
				logger.Error("forward top liked failed", "error", err)
			}
		}); err != nil {
			log.Fatalf("forward cron %q: %v", cfg.ForwardCron, err)
		}
	}

	c.Start()
	logger.Info("cron scheduler started", "digest", cfg.DigestCron, "forward", cfg.ForwardCron)
}
