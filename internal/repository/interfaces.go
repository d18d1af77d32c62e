package repository

import (
	"context"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/google/uuid"
)

// UserRepository persists credentials and profile data. Create must fail
// with domain.ErrDuplicateUsername when the username is taken, atomically
// with respect to concurrent creates.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// SessionRepository owns the token-hash to user mapping.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	// DeleteByTokenHash is a no-op for unknown hashes.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	// WithSession resolves the hash and runs fn while the session cannot be
	// deleted. Concurrent deletes of the same session wait for fn to return.
	// Repository calls made with the ctx handed to fn join the lock's
	// transaction where the backend has one.
	WithSession(ctx context.Context, tokenHash string, fn func(context.Context, *domain.Session) error) error
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	List(ctx context.Context) ([]*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	User    UserRepository
	Session SessionRepository
	Post    PostRepository
}
