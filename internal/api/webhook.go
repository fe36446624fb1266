package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/telegram"
)

// handleWebhook receives Telegram updates. Only like-button callbacks carry
// state; everything else is acknowledged and ignored. Telegram retries
// non-200 responses, so decode problems are answered with 200 to avoid a
// redelivery loop.
func (s *Server) handleWebhook(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		logger.Warn("undecodable webhook update", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true, "note": "ignored"})
		return
	}

	cb := update.CallbackQuery
	if cb == nil || !cb.IsLike() {
		c.JSON(http.StatusOK, gin.H{"ok": true, "note": "ignored"})
		return
	}

	article, ok := cb.Article()
	if !ok {
		logger.Warn("like callback without recoverable article", "callback", cb.ID)
		s.tg.AnswerCallbackQuery(c.Request.Context(), cb.ID, "⚠️ 기사를 찾을 수 없습니다")
		c.JSON(http.StatusOK, gin.H{"ok": true, "note": "no article"})
		return
	}

	userID := strconv.FormatInt(cb.From.ID, 10)
	if err := s.svc.SaveLike(c.Request.Context(), userID, article); err != nil {
		logger.Error("failed to save like", "user", userID, "error", err)
		s.tg.AnswerCallbackQuery(c.Request.Context(), cb.ID, "⚠️ 저장에 실패했습니다")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	s.tg.AnswerCallbackQuery(c.Request.Context(), cb.ID, "✅ 반영되었습니다!")
	c.JSON(http.StatusOK, gin.H{"ok": true, "saved": article.Title})
}
