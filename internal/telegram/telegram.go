// Package telegram is a minimal Bot API client: enough to send digest
// messages with a like button, answer callback queries and decode webhook
// updates. Message delivery is fire-and-forget from the bot's point of view;
// transient API failures are retried with backoff.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/news"
	"github.com/frozen-seaweed/dtnews/internal/retry"
)

const apiBase = "https://api.telegram.org/bot"

// Client talks to the Telegram Bot API.
type Client struct {
	token  string
	http   *http.Client
	policy retry.Policy
}

// NewClient builds a client with the given request timeout and retry policy.
func NewClient(token string, timeout time.Duration, policy retry.Policy) *Client {
	return &Client{
		token:  token,
		http:   &http.Client{Timeout: timeout},
		policy: policy,
	}
}

// SendMessage delivers plain text to a chat or channel with HTML parse mode.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     Sanitize(text),
		"parse_mode":               "HTML",
		"disable_web_page_preview": false,
	}
	return c.callWithRetry(ctx, "sendMessage", payload)
}

// SendArticle delivers one article as 📰 title / summary / link with a 👍
// inline button. The button payload carries the article JSON so the webhook
// can store the like without re-parsing message text.
func (c *Client) SendArticle(ctx context.Context, chatID string, a news.Article) error {
	var b strings.Builder
	b.WriteString("📰 " + a.Title)
	if a.Summary != "" {
		b.WriteString("\n\n" + a.Summary)
	}
	if a.URL != "" {
		b.WriteString("\n\n" + a.URL)
	}

	payload := map[string]interface{}{
		"chat_id":      chatID,
		"text":         Sanitize(b.String()),
		"parse_mode":   "HTML",
		"reply_markup": likeKeyboard(a),
	}
	return c.callWithRetry(ctx, "sendMessage", payload)
}

// AnswerCallbackQuery acknowledges a like button press. Failures are logged
// but not returned; the like itself has already been stored.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) {
	payload := map[string]interface{}{
		"callback_query_id": callbackID,
		"text":              text,
		"show_alert":        false,
	}
	if err := c.call(ctx, "answerCallbackQuery", payload); err != nil {
		logger.Warn("answerCallbackQuery failed", "error", err)
	}
}

func likeKeyboard(a news.Article) map[string]interface{} {
	raw, err := json.Marshal(a)
	data := "like"
	// Telegram caps callback_data at 64 bytes; fall back to the bare action
	// and let the webhook recover the title from the message text.
	if err == nil && len(raw) <= 59 {
		data = "like:" + string(raw)
	}
	return map[string]interface{}{
		"inline_keyboard": [][]map[string]string{
			{{"text": "👍 좋아요", "callback_data": data}},
		},
	}
}

func (c *Client) callWithRetry(ctx context.Context, method string, payload map[string]interface{}) error {
	return retry.Do(ctx, c.policy, func() error {
		return c.call(ctx, method, payload)
	})
}

func (c *Client) call(ctx context.Context, method string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}

	url := apiBase + c.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return fmt.Errorf("%s: decode response (status %d): %w", method, resp.StatusCode, err)
	}
	if !result.OK {
		return fmt.Errorf("%s: telegram API error: status %d: %s", method, resp.StatusCode, result.Description)
	}
	return nil
}
