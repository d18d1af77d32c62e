package memory

import (
	"context"
	"sync"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/google/uuid"
)

type userRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*domain.User
	byUsername map[string]uuid.UUID
}

func NewUserRepository() *userRepository {
	return &userRepository{
		byID:       make(map[uuid.UUID]*domain.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return domain.ErrDuplicateUsername
	}
	r.byID[user.ID] = cloneUser(user)
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if user.Username != current.Username {
		if _, taken := r.byUsername[user.Username]; taken {
			return domain.ErrDuplicateUsername
		}
		delete(r.byUsername, current.Username)
		r.byUsername[user.Username] = user.ID
	}

	updated := cloneUser(current)
	updated.Username = user.Username
	updated.FavoriteBook = append([]byte(nil), user.FavoriteBook...)
	updated.UpdatedAt = user.UpdatedAt
	r.byID[user.ID] = updated
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.FavoriteBook != nil {
		c.FavoriteBook = append([]byte(nil), u.FavoriteBook...)
	}
	return &c
}
