package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu                    sync.RWMutex
	APICallsTotal         int64
	APICallsSuccessful    int64
	InterviewsStarted     int64
	AnswersSubmitted      int64
	QuestionsAdded        int64
	NotificationsSent     int64
	StaleResponsesDropped int64
	LastUpdateTime        time.Time
}

// Snapshot is a lock-free copy of the counters
type Snapshot struct {
	APICallsTotal         int64     `json:"api_calls_total"`
	APICallsSuccessful    int64     `json:"api_calls_successful"`
	InterviewsStarted     int64     `json:"interviews_started"`
	AnswersSubmitted      int64     `json:"answers_submitted"`
	QuestionsAdded        int64     `json:"questions_added"`
	NotificationsSent     int64     `json:"notifications_sent"`
	StaleResponsesDropped int64     `json:"stale_responses_dropped"`
	LastUpdateTime        time.Time `json:"last_update_time"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementAPICall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APICallsTotal++
	if success {
		m.APICallsSuccessful++
	}
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementInterviewsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InterviewsStarted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAnswersSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnswersSubmitted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementQuestionsAdded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuestionsAdded++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementNotificationsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotificationsSent++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementStaleResponsesDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StaleResponsesDropped++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		APICallsTotal:         m.APICallsTotal,
		APICallsSuccessful:    m.APICallsSuccessful,
		InterviewsStarted:     m.InterviewsStarted,
		AnswersSubmitted:      m.AnswersSubmitted,
		QuestionsAdded:        m.QuestionsAdded,
		NotificationsSent:     m.NotificationsSent,
		StaleResponsesDropped: m.StaleResponsesDropped,
		LastUpdateTime:        m.LastUpdateTime,
	}
}

// LogValues flattens the snapshot into slog key/value pairs
func (s Snapshot) LogValues() []any {
	return []any{
		"api_calls_total", s.APICallsTotal,
		"api_calls_successful", s.APICallsSuccessful,
		"interviews_started", s.InterviewsStarted,
		"answers_submitted", s.AnswersSubmitted,
		"questions_added", s.QuestionsAdded,
		"notifications_sent", s.NotificationsSent,
		"stale_responses_dropped", s.StaleResponsesDropped,
	}
}
