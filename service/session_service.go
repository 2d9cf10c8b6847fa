package service

import (
	"sync"

	"coursechat-backend/models"

	"github.com/google/uuid"
)

// DefaultMaxHistory is the number of question/answer pairs retained per
// session when MAX_HISTORY is not configured
const DefaultMaxHistory = 2

// SessionManager keeps per-session conversation history in memory. Sessions
// are cheap: an unknown session id simply has no history yet, so restarts
// lose context but never break clients.
type SessionManager struct {
	mu         sync.Mutex
	sessions   map[string][]models.Exchange
	maxHistory int
}

// NewSessionManager creates a session manager retaining up to maxHistory
// exchanges per session. A non-positive value falls back to the default.
func NewSessionManager(maxHistory int) *SessionManager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &SessionManager{
		sessions:   make(map[string][]models.Exchange),
		maxHistory: maxHistory,
	}
}

// CreateSession returns a fresh session id
func (m *SessionManager) CreateSession() string {
	return uuid.New().String()
}

// GetHistory returns a copy of the session's retained exchanges, oldest
// first. Unknown ids yield an empty history.
func (m *SessionManager) GetHistory(sessionID string) []models.Exchange {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.sessions[sessionID]
	if len(history) == 0 {
		return nil
	}
	out := make([]models.Exchange, len(history))
	copy(out, history)
	return out
}

// AddExchange records a completed question/answer pair, evicting the oldest
// pairs beyond the retention window
func (m *SessionManager) AddExchange(sessionID, question, answer string) {
	if sessionID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.sessions[sessionID], models.Exchange{
		Question: question,
		Answer:   answer,
	})
	if len(history) > m.maxHistory {
		history = history[len(history)-m.maxHistory:]
	}
	m.sessions[sessionID] = history
}
