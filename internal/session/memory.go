package session

import (
	"context"
	"sync"

	"github.com/alexanderramin/eventwise/internal/domain"
)

// memoryBackend keeps sessions in process memory. The map lock is held only
// for lookups and inserts; per-session serialization lives in SessionStore.
type memoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemoryStore returns a process-local store. Nothing survives a restart.
func NewMemoryStore() *SessionStore {
	return newSessionStore(&memoryBackend{sessions: make(map[string]*domain.Session)})
}

func (m *memoryBackend) load(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (m *memoryBackend) save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *memoryBackend) remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memoryBackend) removeAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*domain.Session)
	return nil
}

func (m *memoryBackend) ids(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out, nil
}
