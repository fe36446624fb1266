package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/metrics"
	"github.com/frozen-seaweed/dtnews/internal/news"
	"github.com/frozen-seaweed/dtnews/internal/recommend"
)

// intParam reads an integer query parameter clamped to [min, max].
func intParam(c *gin.Context, name string, def, min, max int) int {
	v := def
	if raw := c.Query(name); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			v = parsed
		}
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v
}

// handleRank ranks candidates for a user. Candidates may be POSTed as
// {"items": [{title, summary, url}]}; otherwise the configured sources are
// queried.
func (s *Server) handleRank(c *gin.Context) {
	userID := c.DefaultQuery("userId", "test")
	topN := intParam(c, "top", 5, 1, 50)
	days := intParam(c, "days", s.cfg.ProfileWindowDays, 1, 60)

	var candidates []news.Article
	if c.Request.Method == http.MethodPost {
		var body struct {
			Items []news.Article `json:"items"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			candidates = body.Items
		}
	}
	if len(candidates) == 0 {
		candidates = s.svc.CurrentCandidates(c.Request.Context())
	}
	if len(candidates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "no candidates; POST items or configure sources"})
		return
	}

	ranking, err := s.svc.Rank(c.Request.Context(), userID, candidates, days, topN)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"userId":        userID,
		"profileSource": ranking.Source,
		"daysUsed":      days,
		"candidates":    len(candidates),
		"top":           ranking.Articles,
	})
}

// handleTrain rebuilds and caches a user's profile from their like history.
func (s *Server) handleTrain(c *gin.Context) {
	userID := c.DefaultQuery("userId", "test")
	days := intParam(c, "days", 14, 1, 60)
	topN := intParam(c, "top", 30, 1, 200)

	likeCount, weights, err := s.svc.Train(c.Request.Context(), userID, days)
	if err != nil {
		s.fail(c, err)
		return
	}
	if likeCount == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true, "userId": userID, "likeCount": 0, "message": "no likes to train"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"userId":        userID,
		"daysCollected": days,
		"likeCount":     likeCount,
		"saved":         true,
		"topTokens":     recommend.TopTokens(weights, topN),
	})
}

// handleProfile reports what a freshly built profile would look like,
// without caching it.
func (s *Server) handleProfile(c *gin.Context) {
	userID := c.DefaultQuery("userId", "test")
	days := intParam(c, "days", 14, 1, 30)
	topN := intParam(c, "top", 20, 1, 50)

	likeCount, weights, err := s.svc.ProfileReport(c.Request.Context(), userID, days)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":        userID,
		"daysCollected": days,
		"likeCount":     likeCount,
		"topTokens":     recommend.TopTokens(weights, topN),
	})
}

// handleSendPersonalized sends a personalized top-N to a chat.
func (s *Server) handleSendPersonalized(c *gin.Context) {
	userID := c.DefaultQuery("userId", "test")
	chatID := c.Query("chatId")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "chatId required"})
		return
	}
	topN := intParam(c, "top", s.cfg.TopN, 1, 10)
	days := intParam(c, "days", s.cfg.ProfileWindowDays, 1, 60)

	sent, err := s.svc.SendPersonalized(c.Request.Context(), userID, chatID, days, topN)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "userId": userID, "sent": sent})
}

// handleCronDigest triggers the channel digest job.
func (s *Server) handleCronDigest(c *gin.Context) {
	days := intParam(c, "days", s.cfg.ChannelWindowDays, 1, 60)

	if err := s.svc.SendChannelDigest(c.Request.Context(), s.cfg.ChannelChatID, days); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "days": days})
}

// handleCronForward triggers the liked-articles forward job.
func (s *Server) handleCronForward(c *gin.Context) {
	chatID := c.DefaultQuery("chatId", s.cfg.ForwardChatID)
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "no forward chat configured"})
		return
	}

	if err := s.svc.ForwardTopLiked(c.Request.Context(), chatID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleHealth(c *gin.Context) {
	stats := metrics.Global.GetStats()

	status := http.StatusOK
	state := "ok"
	if healthy, ok := stats["is_healthy"].(bool); ok && !healthy {
		status = http.StatusServiceUnavailable
		state = "error"
	}

	c.JSON(status, gin.H{
		"status":     state,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Global.GetStats())
}

func (s *Server) fail(c *gin.Context, err error) {
	logger.Error("request failed", "path", c.FullPath(), "error", err)
	metrics.Global.SetError(err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
}
