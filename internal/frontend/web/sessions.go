package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/septivank/mine-safety-console/internal/controller"
)

// Session holds the current view of one browser client
type Session struct {
	ID string

	mu   sync.Mutex
	view controller.View
}

// View returns the session's current view
func (s *Session) View() controller.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SessionManager keeps sessions in memory and forgets them after ttl of inactivity
type SessionManager struct {
	sessions *cache.Cache
}

// NewSessionManager creates a session manager
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: cache.New(ttl, ttl/2),
	}
}

// Create stores a new session showing view
func (m *SessionManager) Create(view controller.View) *Session {
	s := &Session{ID: uuid.NewString(), view: view}
	m.sessions.Set(s.ID, s, cache.DefaultExpiration)
	return s
}

// Get returns a live session and refreshes its expiry
func (m *SessionManager) Get(id string) (*Session, bool) {
	item, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s := item.(*Session)
	m.sessions.Set(id, s, cache.DefaultExpiration)
	return s, true
}

// Delete forgets a session
func (m *SessionManager) Delete(id string) {
	m.sessions.Delete(id)
}

// Count returns the number of live sessions
func (m *SessionManager) Count() int {
	return m.sessions.ItemCount()
}

// Update runs fn with the session locked and stores the view it returns.
// When fn fails the view is left as it was.
func (s *Session) Update(fn func(current controller.View) (controller.View, error)) (controller.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.view)
	if err != nil {
		return s.view, err
	}
	s.view = next
	return next, nil
}
