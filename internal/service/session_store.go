package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/repository"
	"github.com/google/uuid"
)

// SessionStore issues opaque tokens. Only the SHA-256 of a token is
// persisted; the raw value is handed to the client once.
type SessionStore struct {
	sessions repository.SessionRepository
}

func NewSessionStore(sessions repository.SessionRepository) *SessionStore {
	return &SessionStore{sessions: sessions}
}

func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID) (*domain.Session, string, error) {
	token := uuid.NewString()
	session := &domain.Session{
		ID:        uuid.New(),
		TokenHash: hashToken(token),
		UserID:    userID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	return session, token, nil
}

func (s *SessionStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, domain.ErrInvalidSession
	}

	session, err := s.sessions.GetByTokenHash(ctx, hashToken(token))
	if errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, domain.ErrInvalidSession
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve session: %w", err)
	}
	return session.UserID, nil
}

// Invalidate is idempotent.
func (s *SessionStore) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteByTokenHash(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// Guard resolves token and runs fn with the session held against
// concurrent invalidation. Errors from fn are returned as is. fn should
// use the ctx it is given for its own repository calls.
func (s *SessionStore) Guard(ctx context.Context, token string, fn func(ctx context.Context, userID uuid.UUID) error) error {
	if token == "" {
		return domain.ErrInvalidSession
	}

	var fnErr error
	err := s.sessions.WithSession(ctx, hashToken(token), func(ctx context.Context, session *domain.Session) error {
		fnErr = fn(ctx, session.UserID)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidSession
	}
	if err != nil {
		return fmt.Errorf("guard session: %w", err)
	}
	return nil
}

// SessionKey identifies the session behind token without revealing it.
func SessionKey(token string) string {
	return hashToken(token)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
