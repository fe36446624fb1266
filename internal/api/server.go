// Package api exposes the bot over HTTP: the Telegram webhook, ranking and
// profile inspection endpoints, manual triggers for the cron jobs, and
// health/metrics probes.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/frozen-seaweed/dtnews/internal/config"
	"github.com/frozen-seaweed/dtnews/internal/digest"
)

// CallbackAnswerer acknowledges Telegram callback queries. The Telegram
// client implements it.
type CallbackAnswerer interface {
	AnswerCallbackQuery(ctx context.Context, callbackID, text string)
}

// Server holds the handler dependencies.
type Server struct {
	svc *digest.Service
	tg  CallbackAnswerer
	cfg *config.Config
}

// NewServer builds the API server.
func NewServer(svc *digest.Service, tg CallbackAnswerer, cfg *config.Config) *Server {
	return &Server{svc: svc, tg: tg, cfg: cfg}
}

// Router constructs a Gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/webhook", s.handleWebhook)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/rank", s.handleRank)
		apiGroup.POST("/rank", s.handleRank)
		apiGroup.POST("/train", s.handleTrain)
		apiGroup.GET("/profile", s.handleProfile)
		apiGroup.POST("/send/personalized", s.handleSendPersonalized)
		apiGroup.POST("/cron/digest", s.handleCronDigest)
		apiGroup.POST("/cron/forward-liked", s.handleCronForward)
	}

	r.GET("/healthz", s.handleHealth)
	r.GET("/metricsz", s.handleMetrics)
	return r
}
