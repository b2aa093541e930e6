package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/streetlight-service/internal/domain"
)

type memorySession struct {
	session   domain.Session
	expiresAt time.Time
}

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

// NewMemorySessionRepository returns a process-local session store.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]memorySession), now: time.Now}
}

func (r *memorySessionRepository) Save(_ context.Context, session *domain.Session, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := memorySession{session: *session}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	r.sessions[session.ID] = entry
	return nil
}

func (r *memorySessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt) {
		delete(r.sessions, id)
		return nil, ErrNotFound
	}
	session := entry.session
	return &session, nil
}

func (r *memorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
