package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frozen-seaweed/dtnews/internal/config"
	"github.com/frozen-seaweed/dtnews/internal/digest"
	"github.com/frozen-seaweed/dtnews/internal/kst"
	"github.com/frozen-seaweed/dtnews/internal/news"
	"github.com/frozen-seaweed/dtnews/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memKV struct {
	lists   map[string][]string
	scalars map[string]string
}

func newMemKV() *memKV {
	return &memKV{lists: make(map[string][]string), scalars: make(map[string]string)}
}

func (m *memKV) LPush(_ context.Context, key string, value string) error {
	m.lists[key] = append([]string{value}, m.lists[key]...)
	return nil
}

func (m *memKV) LRange(_ context.Context, key string, _, _ int64) ([]string, error) {
	return append([]string{}, m.lists[key]...), nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.scalars[key] = value
	return nil
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	val, ok := m.scalars[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return val, nil
}

func (m *memKV) Expire(_ context.Context, _ string, _ time.Duration) error { return nil }

func (m *memKV) Scan(_ context.Context, _ uint64, match string, _ int64) ([]string, uint64, error) {
	var keys []string
	for key := range m.lists {
		if ok, _ := path.Match(match, key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, 0, nil
}

type nopSender struct{}

func (nopSender) SendMessage(context.Context, string, string) error       { return nil }
func (nopSender) SendArticle(context.Context, string, news.Article) error { return nil }

type recordingAnswerer struct {
	answers []string
}

func (r *recordingAnswerer) AnswerCallbackQuery(_ context.Context, _, text string) {
	r.answers = append(r.answers, text)
}

func newTestServer() (*Server, *memKV, *recordingAnswerer) {
	kv := newMemKV()
	likes := store.NewLikeStore(kv)
	profiles := store.NewProfileStore(kv)
	clock := kst.NewClockAt(time.Date(2025, 8, 26, 9, 0, 0, 0, kst.Zone))
	svc := digest.New(likes, profiles, nopSender{}, nil, clock,
		func(context.Context) []news.Article { return nil }, 4)

	cfg := &config.Config{
		ChannelChatID:     "-100123",
		ForwardChatID:     "-100123",
		ProfileWindowDays: 30,
		ChannelWindowDays: 30,
		TopN:              4,
	}
	ans := &recordingAnswerer{}
	return NewServer(svc, ans, cfg), kv, ans
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhook_LikeCallbackSavesAndAnswers(t *testing.T) {
	srv, kv, ans := newTestServer()
	router := srv.Router()

	update := `{
		"update_id": 1,
		"callback_query": {
			"id": "cb1",
			"from": {"id": 12345},
			"data": "like:{\"title\":\"EV battery news\",\"url\":\"https://example.com/a\"}"
		}
	}`
	w := doRequest(router, http.MethodPost, "/webhook", update)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := kv.lists["likes:12345:2025-08-26"]; len(got) != 1 {
		t.Fatalf("like not stored under today's key: %v", kv.lists)
	}
	if len(ans.answers) != 1 || !strings.Contains(ans.answers[0], "반영") {
		t.Errorf("callback not acknowledged: %v", ans.answers)
	}
}

func TestWebhook_NonLikeUpdateIgnored(t *testing.T) {
	srv, kv, ans := newTestServer()
	router := srv.Router()

	w := doRequest(router, http.MethodPost, "/webhook", `{"update_id": 2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(kv.lists) != 0 || len(ans.answers) != 0 {
		t.Error("non-like update must not touch the store or answer anything")
	}
}

func TestWebhook_UndecodableBodyStillAcknowledged(t *testing.T) {
	srv, _, _ := newTestServer()
	router := srv.Router()

	w := doRequest(router, http.MethodPost, "/webhook", "not json at all")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 so Telegram stops redelivering", w.Code)
	}
}

func TestRank_PostedItemsRankedByProfile(t *testing.T) {
	srv, kv, _ := newTestServer()
	router := srv.Router()

	// seed a like so the profile favors EV coverage
	like := `{"update_id":1,"callback_query":{"id":"cb1","from":{"id":12345},"data":"like:{\"title\":\"EV battery outlook\",\"url\":\"https://example.com/l\"}"}}`
	if w := doRequest(router, http.MethodPost, "/webhook", like); w.Code != http.StatusOK {
		t.Fatalf("seed like failed: %d", w.Code)
	}
	if len(kv.lists) == 0 {
		t.Fatal("seed like not stored")
	}

	body := `{"items":[{"title":"Stock market"},{"title":"EV battery news"}]}`
	w := doRequest(router, http.MethodPost, "/api/rank?userId=12345&top=2", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		OK            bool   `json:"ok"`
		ProfileSource string `json:"profileSource"`
		Top           []struct {
			Title string  `json:"title"`
			Score float64 `json:"_score"`
		} `json:"top"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || len(resp.Top) != 2 {
		t.Fatalf("unexpected response: %s", w.Body.String())
	}
	if resp.Top[0].Title != "EV battery news" || resp.Top[0].Score <= 0 {
		t.Errorf("top result = %+v, want the liked-topic article scored first", resp.Top[0])
	}
	if resp.ProfileSource != string(digest.ProfileBuilt) {
		t.Errorf("profileSource = %q, want %q", resp.ProfileSource, digest.ProfileBuilt)
	}
}

func TestRank_NoCandidates(t *testing.T) {
	srv, _, _ := newTestServer()
	router := srv.Router()

	w := doRequest(router, http.MethodGet, "/api/rank?userId=12345", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 when no candidates exist anywhere", w.Code)
	}
}

func TestProfile_ReportsWithoutCaching(t *testing.T) {
	srv, kv, _ := newTestServer()
	router := srv.Router()

	like := `{"update_id":1,"callback_query":{"id":"cb1","from":{"id":12345},"data":"like:{\"title\":\"EV battery outlook\",\"url\":\"https://example.com/l\"}"}}`
	doRequest(router, http.MethodPost, "/webhook", like)

	w := doRequest(router, http.MethodGet, "/api/profile?userId=12345", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		LikeCount int `json:"likeCount"`
		TopTokens []struct {
			Token  string  `json:"token"`
			Weight float64 `json:"weight"`
		} `json:"topTokens"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.LikeCount != 1 || len(resp.TopTokens) == 0 {
		t.Errorf("unexpected report: %s", w.Body.String())
	}
	if _, cached := kv.scalars["kw:12345"]; cached {
		t.Error("profile inspection must not write the cache")
	}
}

func TestTrainEndpoint_PersistsProfile(t *testing.T) {
	srv, kv, _ := newTestServer()
	router := srv.Router()

	like := `{"update_id":1,"callback_query":{"id":"cb1","from":{"id":12345},"data":"like:{\"title\":\"EV battery outlook\",\"url\":\"https://example.com/l\"}"}}`
	doRequest(router, http.MethodPost, "/webhook", like)

	w := doRequest(router, http.MethodPost, "/api/train?userId=12345", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if _, cached := kv.scalars["kw:12345"]; !cached {
		t.Error("train must persist the profile")
	}
}

func TestSendPersonalized_RequiresChatID(t *testing.T) {
	srv, _, _ := newTestServer()
	router := srv.Router()

	w := doRequest(router, http.MethodPost, "/api/send/personalized?userId=12345", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without chatId", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer()
	router := srv.Router()

	w := doRequest(router, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
		t.Errorf("unexpected status %d", w.Code)
	}
}
