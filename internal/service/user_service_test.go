package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/repository/memory"
	"github.com/dom/qa-assessment/internal/service"
	"github.com/dom/qa-assessment/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	existingBook := &domain.Book{Key: "/works/OL1W", Title: "Old Favorite"}

	tests := []struct {
		name      string
		input     service.UpdateUserInput
		asOther   bool
		missing   bool
		wantErr   error
		wantValid bool
		check     func(*testing.T, *domain.User)
	}{
		{
			name:  "absent favorite book is left alone",
			input: service.UpdateUserInput{Username: strPtr("renamed")},
			check: func(t *testing.T, u *domain.User) {
				assert.Equal(t, "renamed", u.Username)
				book, err := u.Book()
				require.NoError(t, err)
				assert.Equal(t, existingBook, book)
			},
		},
		{
			name:  "null clears favorite book",
			input: service.UpdateUserInput{FavoriteBook: json.RawMessage(`null`)},
			check: func(t *testing.T, u *domain.User) {
				book, err := u.Book()
				require.NoError(t, err)
				assert.Nil(t, book)
			},
		},
		{
			name:  "object replaces favorite book",
			input: service.UpdateUserInput{FavoriteBook: json.RawMessage(`{"key":"/works/OL2W","title":"New","author_name":["A"]}`)},
			check: func(t *testing.T, u *domain.User) {
				book, err := u.Book()
				require.NoError(t, err)
				assert.Equal(t, &domain.Book{Key: "/works/OL2W", Title: "New", AuthorName: []string{"A"}}, book)
			},
		},
		{name: "string favorite book", input: service.UpdateUserInput{FavoriteBook: json.RawMessage(`"Dune"`)}, wantValid: true},
		{name: "number favorite book", input: service.UpdateUserInput{FavoriteBook: json.RawMessage(`42`)}, wantValid: true},
		{name: "empty username", input: service.UpdateUserInput{Username: strPtr("")}, wantValid: true},
		{name: "duplicate username", input: service.UpdateUserInput{Username: strPtr("taken")}, wantErr: domain.ErrDuplicateUsername},
		{name: "another user", input: service.UpdateUserInput{Username: strPtr("x")}, asOther: true, wantErr: domain.ErrForbidden},
		{name: "missing user", input: service.UpdateUserInput{Username: strPtr("x")}, missing: true, wantErr: domain.ErrNotFound},
		{name: "validation precedes lookup", input: service.UpdateUserInput{Username: strPtr("")}, missing: true, wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := memory.NewRepositories()
			users := service.NewUserService(repos.User)
			self, _ := testutil.NewUserBuilder().WithFavoriteBook(existingBook).Build(t, repos.User)
			other, _ := testutil.NewUserBuilder().WithUsername("taken").Build(t, repos.User)

			target := self.ID
			switch {
			case tt.asOther:
				target = other.ID
			case tt.missing:
				target = uuid.New()
			}

			updated, err := users.UpdateUser(ctx, self.ID, target, tt.input)
			switch {
			case tt.wantValid:
				assert.True(t, domain.IsValidationError(err), "got %v", err)
				return
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.check(t, updated)

			stored, err := users.GetUser(ctx, self.ID)
			require.NoError(t, err)
			tt.check(t, stored)
		})
	}
}

func TestUserService_GetUserNotFound(t *testing.T) {
	users := service.NewUserService(memory.NewRepositories().User)

	_, err := users.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
