package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateUserInput carries a partial profile update. An absent favoriteBook
// leaves the stored one untouched and an explicit null clears it.
type UpdateUserInput struct {
	Username     *string         `json:"username" validate:"omitnil,min=1,max=64"`
	FavoriteBook json.RawMessage `json:"favoriteBook"`
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, actorID, targetID uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}
	book, clearBook, err := parseFavoriteBook(input.FavoriteBook)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if actorID != targetID {
		return nil, domain.ErrForbidden
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	switch {
	case clearBook:
		user.FavoriteBook = nil
	case book != nil:
		encoded, err := json.Marshal(book)
		if err != nil {
			return nil, fmt.Errorf("encode favorite book: %w", err)
		}
		user.FavoriteBook = datatypes.JSON(encoded)
	}
	user.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func parseFavoriteBook(raw json.RawMessage) (book *domain.Book, clearBook bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, true, nil
	}

	var b domain.Book
	if err := json.Unmarshal(raw, &b); err != nil {
		if verr := DecodeError(err, "favoriteBook"); domain.IsValidationError(verr) {
			return nil, false, verr
		}
		return nil, false, fmt.Errorf("decode favorite book: %w", err)
	}
	if err := Validate(b, "favoriteBook"); err != nil {
		return nil, false, err
	}
	return &b, false, nil
}

