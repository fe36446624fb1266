package metrics

import (
	"sync"
	"time"
)

// Metrics tracks process-wide counters for the bot. All access goes through
// the mutex; Global is shared between the HTTP handlers and the jobs.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	LikesSaved        int64
	ProfilesBuilt     int64
	CandidatesFetched int64
	ArticlesScored    int64
	MessagesSent      int64
	SendFailures      int64
	CorruptRecords    int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementLikesSaved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LikesSaved++
}

func (m *Metrics) IncrementProfilesBuilt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfilesBuilt++
}

func (m *Metrics) AddCandidatesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesFetched += int64(n)
}

func (m *Metrics) AddArticlesScored(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesScored += int64(n)
}

func (m *Metrics) IncrementMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSent++
}

func (m *Metrics) IncrementSendFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendFailures++
}

func (m *Metrics) IncrementCorruptRecords() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CorruptRecords++
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"likes_saved":        m.LikesSaved,
		"profiles_built":     m.ProfilesBuilt,
		"candidates_fetched": m.CandidatesFetched,
		"articles_scored":    m.ArticlesScored,
		"messages_sent":      m.MessagesSent,
		"send_failures":      m.SendFailures,
		"corrupt_records":    m.CorruptRecords,
		"last_run_time":      m.LastRunTime.Format(time.RFC3339),
		"last_error_time":    m.LastErrorTime.Format(time.RFC3339),
		"last_error":         m.LastError,
		"is_healthy":         m.IsHealthy,
	}
}
