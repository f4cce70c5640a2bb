package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultCookieName is used when the config leaves the cookie name empty
const DefaultCookieName = "irrigation_session"

// ManagerConfig holds session manager configuration
type ManagerConfig struct {
	CookieName string
	TTL        time.Duration // idle sessions older than this are swept; 0 disables expiry
}

// Manager maps session cookies to isolated States
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*State
	cookie   string
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates an empty session manager
func NewManager(config ManagerConfig, logger *zap.Logger) *Manager {
	name := config.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &Manager{
		sessions: make(map[string]*State),
		cookie:   name,
		ttl:      config.TTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the state for id, if it exists
func (m *Manager) Get(id string) (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Create starts a fresh session with default state
func (m *Manager) Create() *State {
	s := NewState(uuid.NewString())
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	m.logger.Debug("Session: created", zap.String("session_id", s.ID()))
	return s
}

// Resolve returns the state bound to the request cookie, creating a session
// and setting the cookie when there is none or it is unknown.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) *State {
	if c, err := r.Cookie(m.cookie); err == nil {
		if s, ok := m.Get(c.Value); ok {
			s.touch(m.now())
			return s
		}
	}
	s := m.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    s.ID(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Reset drops the request's session and starts a new one
func (m *Manager) Reset(w http.ResponseWriter, r *http.Request) *State {
	if c, err := r.Cookie(m.cookie); err == nil {
		m.Delete(c.Value)
	}
	// Resolve cannot find the dropped id, so it issues a fresh cookie
	return m.Resolve(w, r)
}

// Delete removes a session
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many were removed
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.idleSince(now) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("Session: swept idle sessions", zap.Int("removed", removed), zap.Int("remaining", len(m.sessions)))
	}
	return removed
}

// Start sweeps idle sessions every interval until ctx is cancelled
func (m *Manager) Start(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("Session: sweeper stopped")
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
