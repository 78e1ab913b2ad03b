package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vogiaan1904/ticketbottle-museum/internal/repository"
)

type session struct {
	expiresAt time.Time
	values    map[string][]byte
}

type memorySessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]*session
}

// NewSessionStore returns a process-local store. Expired sessions are
// dropped lazily on access.
func NewSessionStore() repository.SessionStore {
	return NewSessionStoreWithClock(time.Now)
}

func NewSessionStoreWithClock(now func() time.Time) repository.SessionStore {
	return &memorySessionStore{
		now:      now,
		sessions: make(map[string]*session),
	}
}

func (m *memorySessionStore) Create(_ context.Context, sessionID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionID] = &session{
		expiresAt: m.now().Add(ttl),
		values:    make(map[string][]byte),
	}
	return nil
}

func (m *memorySessionStore) Exists(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.live(sessionID) != nil, nil
}

func (m *memorySessionStore) Save(_ context.Context, sessionID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ss := m.live(sessionID)
	if ss == nil {
		return repository.ErrSessionNotFound
	}
	ss.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *memorySessionStore) Load(_ context.Context, sessionID, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ss := m.live(sessionID)
	if ss == nil {
		return nil, repository.ErrNotFound
	}
	v, ok := ss.values[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memorySessionStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ss := m.live(sessionID); ss != nil {
		ss.values = make(map[string][]byte)
	}
	return nil
}

// live must be called with mu held.
func (m *memorySessionStore) live(sessionID string) *session {
	ss, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	if !m.now().Before(ss.expiresAt) {
		delete(m.sessions, sessionID)
		return nil
	}
	return ss
}
