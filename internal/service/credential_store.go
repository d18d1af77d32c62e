package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore keeps usernames and bcrypt password hashes.
type CredentialStore struct {
	users     repository.UserRepository
	cost      int
	dummyHash []byte
}

func NewCredentialStore(users repository.UserRepository, cost int) *CredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Compared against when the username is unknown, so a miss costs the
	// same as a wrong password.
	dummy, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)

	return &CredentialStore{
		users:     users,
		cost:      cost,
		dummyHash: dummy,
	}
}

func (s *CredentialStore) Register(ctx context.Context, username, password string) (*domain.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// VerifyCredentials returns domain.ErrInvalidCredentials for both an
// unknown username and a wrong password.
func (s *CredentialStore) VerifyCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
