// Package config loads the bot configuration from the environment. The
// recommendation core takes no configuration at all; everything here belongs
// to the orchestration layer.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Telegram settings
	TelegramToken string
	ChannelChatID string // morning digest destination
	ForwardChatID string // liked-articles forward destination (falls back to ChannelChatID)

	// Candidate sourcing
	NewsAPIKey        string
	NewsAPIQuery      string // base query OR'd with learned keywords
	NewsSourceURL     string // optional external JSON candidate feed
	SourcesConfigPath string // YAML list of RSS feeds

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Personalization settings
	ProfileWindowDays int // like-history window when building a user profile
	ChannelWindowDays int // like-history window for the channel digest
	TopN              int // articles sent per digest

	// Scheduling (cron expressions, evaluated in KST)
	DigestCron  string
	ForwardCron string

	// Sent-article cache
	SentCacheBackend  string // "redis" or "file"
	SentCacheFilePath string
	SentCacheTTLHours int

	// App settings
	HTTPPort       string
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		NewsAPIQuery:      "자동차 OR 현대차 OR EV OR 배터리 OR 모빌리티 OR 기아",
		SourcesConfigPath: "configs/sources.yaml",
		RedisAddr:         "localhost:6379",
		ProfileWindowDays: 30,
		ChannelWindowDays: 30,
		TopN:              4,
		DigestCron:        "0 8 * * *",
		ForwardCron:       "30 8 * * *",
		SentCacheBackend:  "redis",
		SentCacheFilePath: "sent_articles.json",
		SentCacheTTLHours: 7 * 24,
		HTTPPort:          "8080",
		RequestTimeout:    30 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        2 * time.Second,
	}

	// Load from environment
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.ChannelChatID = os.Getenv("DT_CHANNEL_ID")
	cfg.ForwardChatID = getEnvOrDefault("FWD_CHANNEL_ID", cfg.ChannelChatID)

	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.NewsSourceURL = os.Getenv("NEWS_SOURCE_URL")
	if q := os.Getenv("NEWS_API_QUERY"); q != "" {
		cfg.NewsAPIQuery = q
	}
	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)

	cfg.RedisAddr = getEnvOrDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = os.Getenv("REDIS_PASS")
	cfg.RedisDB = getEnvIntOrDefault("REDIS_DB", 0)

	cfg.ProfileWindowDays = getEnvIntOrDefault("PROFILE_WINDOW_DAYS", cfg.ProfileWindowDays)
	cfg.ChannelWindowDays = getEnvIntOrDefault("CHANNEL_WINDOW_DAYS", cfg.ChannelWindowDays)
	cfg.TopN = getEnvIntOrDefault("DIGEST_TOP_N", cfg.TopN)

	cfg.DigestCron = getEnvOrDefault("DIGEST_CRON", cfg.DigestCron)
	cfg.ForwardCron = getEnvOrDefault("FORWARD_CRON", cfg.ForwardCron)

	cfg.SentCacheBackend = getEnvOrDefault("SENT_CACHE_BACKEND", cfg.SentCacheBackend)
	cfg.SentCacheFilePath = getEnvOrDefault("SENT_CACHE_FILE_PATH", cfg.SentCacheFilePath)
	cfg.SentCacheTTLHours = getEnvIntOrDefault("SENT_CACHE_TTL_HOURS", cfg.SentCacheTTLHours)

	cfg.HTTPPort = getEnvOrDefault("PORT", cfg.HTTPPort)
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	if v := os.Getenv("RETRY_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryDelay = time.Duration(val) * time.Second
		}
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.ChannelChatID == "" {
		return fmt.Errorf("DT_CHANNEL_ID is required")
	}
	if c.SentCacheBackend != "redis" && c.SentCacheBackend != "file" {
		return fmt.Errorf("SENT_CACHE_BACKEND must be 'redis' or 'file'")
	}
	if c.TopN < 1 {
		return fmt.Errorf("DIGEST_TOP_N must be at least 1")
	}
	return nil
}
