package telegram

import (
	"encoding/json"
	"strings"

	"github.com/frozen-seaweed/dtnews/internal/news"
)

// Update is the subset of a Telegram webhook update the bot cares about.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// CallbackQuery is an inline-button press.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"`
}

// User identifies the Telegram account behind an update.
type User struct {
	ID int64 `json:"id"`
}

// Message is the message the pressed button was attached to.
type Message struct {
	Text string `json:"text"`
	Chat Chat   `json:"chat"`
}

// Chat identifies a chat or channel.
type Chat struct {
	ID int64 `json:"id"`
}

// IsLike reports whether the callback is a like button press. Both the bare
// "like" action and "like:{json}" payloads count.
func (cb *CallbackQuery) IsLike() bool {
	return cb.Data == "like" || strings.HasPrefix(cb.Data, "like:")
}

// Article recovers the liked article from the callback. It prefers the JSON
// payload embedded in callback_data and falls back to parsing the title out
// of the message text.
func (cb *CallbackQuery) Article() (news.Article, bool) {
	if idx := strings.Index(cb.Data, ":"); idx > -1 {
		var a news.Article
		if err := json.Unmarshal([]byte(cb.Data[idx+1:]), &a); err == nil && (a.Title != "" || a.URL != "") {
			if a.Title == "" {
				a.Title = titleFromMessage(cb.messageText())
			}
			return a, true
		}
	}

	if title := titleFromMessage(cb.messageText()); title != "" {
		return news.Article{Title: title}, true
	}
	return news.Article{}, false
}

func (cb *CallbackQuery) messageText() string {
	if cb.Message == nil {
		return ""
	}
	return cb.Message.Text
}

// titleFromMessage pulls the headline out of a digest message. Digest lines
// start with 📰 (or ✅ for summary headers); the first such line, stripped
// of markers and numbering, is the title.
func titleFromMessage(text string) string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return ""
	}

	line := lines[0]
	for _, l := range lines {
		stripped := strings.TrimLeft(l, "*")
		if strings.HasPrefix(stripped, "📰") || strings.HasPrefix(stripped, "✅") {
			line = l
			break
		}
	}

	line = strings.TrimLeft(line, "*")
	line = strings.TrimPrefix(line, "📰")
	line = strings.TrimPrefix(line, "✅")
	line = strings.TrimSpace(line)

	// drop "1. " style numbering
	if idx := strings.Index(line, ". "); idx > 0 && idx <= 3 {
		if isDigits(line[:idx]) {
			line = strings.TrimSpace(line[idx+2:])
		}
	}
	return line
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
