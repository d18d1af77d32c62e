package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/dom/qa-assessment/internal/domain"
)

var errTokenCollision = errors.New("session token already exists")

// sessionEntry carries its own lock so that guarding one session never
// blocks work on another.
type sessionEntry struct {
	mu      sync.RWMutex
	session domain.Session
	deleted bool
}

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewSessionRepository() *sessionRepository {
	return &sessionRepository{sessions: make(map[string]*sessionEntry)}
}

func (r *sessionRepository) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.TokenHash]; exists {
		return errTokenCollision
	}
	r.sessions[session.TokenHash] = &sessionEntry{session: *session}
	return nil
}

func (r *sessionRepository) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.RLock()
	entry, ok := r.sessions[tokenHash]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	session := entry.session
	return &session, nil
}

// DeleteByTokenHash unlinks the entry first, then waits for guarded callers
// of that session to finish.
func (r *sessionRepository) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	entry, ok := r.sessions[tokenHash]
	delete(r.sessions, tokenHash)
	r.mu.Unlock()

	if ok {
		entry.mu.Lock()
		entry.deleted = true
		entry.mu.Unlock()
	}
	return nil
}

// WithSession holds the session's read lock while fn runs. fn must not
// delete the same session.
func (r *sessionRepository) WithSession(ctx context.Context, tokenHash string, fn func(context.Context, *domain.Session) error) error {
	r.mu.RLock()
	entry, ok := r.sessions[tokenHash]
	r.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()
	if entry.deleted {
		return domain.ErrNotFound
	}
	session := entry.session
	return fn(ctx, &session)
}
