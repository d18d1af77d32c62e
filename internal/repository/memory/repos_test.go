package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newUser(username string) *domain.User {
	now := time.Now()
	return &domain.User{ID: uuid.New(), Username: username, PasswordHash: "h", CreatedAt: now, UpdatedAt: now}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	alice := newUser("alice")
	require.NoError(t, repo.Create(ctx, alice))
	assert.ErrorIs(t, repo.Create(ctx, newUser("alice")), domain.ErrDuplicateUsername)

	t.Run("returned users are copies", func(t *testing.T) {
		got, err := repo.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		got.Username = "mutated"

		again, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", again.Username)
	})

	t.Run("rename frees the old name", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newUser("bob")))

		renamed := *alice
		renamed.Username = "alicia"
		renamed.FavoriteBook = datatypes.JSON(`{"key":"k","title":"t"}`)
		require.NoError(t, repo.Update(ctx, &renamed))

		_, err := repo.GetByUsername(ctx, "alice")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		got, err := repo.GetByUsername(ctx, "alicia")
		require.NoError(t, err)
		assert.JSONEq(t, `{"key":"k","title":"t"}`, string(got.FavoriteBook))

		renamed.Username = "bob"
		assert.ErrorIs(t, repo.Update(ctx, &renamed), domain.ErrDuplicateUsername)
	})

	t.Run("update of missing user", func(t *testing.T) {
		assert.ErrorIs(t, repo.Update(ctx, newUser("ghost")), domain.ErrNotFound)
	})
}

func TestUserRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	const attempts = 16
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ok  int
		dup int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, newUser("same"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrDuplicateUsername) {
				dup++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dup)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	session := &domain.Session{ID: uuid.New(), TokenHash: "h1", UserID: uuid.New(), CreatedAt: time.Now()}

	require.NoError(t, repo.Create(ctx, session))
	assert.Error(t, repo.Create(ctx, &domain.Session{ID: uuid.New(), TokenHash: "h1"}), "hash collision")

	got, err := repo.GetByTokenHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)

	require.NoError(t, repo.DeleteByTokenHash(ctx, "h1"))
	require.NoError(t, repo.DeleteByTokenHash(ctx, "h1"))

	_, err = repo.GetByTokenHash(ctx, "h1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.WithSession(ctx, "h1", func(context.Context, *domain.Session) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepository_DeleteWaitsForWithSession(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	require.NoError(t, repo.Create(ctx, &domain.Session{ID: uuid.New(), TokenHash: "h1", UserID: uuid.New()}))

	entered := make(chan struct{})
	release := make(chan struct{})
	go repo.WithSession(ctx, "h1", func(context.Context, *domain.Session) error {
		close(entered)
		<-release
		return nil
	})
	<-entered

	deleted := make(chan struct{})
	go func() {
		repo.DeleteByTokenHash(ctx, "h1")
		close(deleted)
	}()

	assert.Never(t, func() bool {
		select {
		case <-deleted:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(release)
	select {
	case <-deleted:
	case <-time.After(2 * time.Second):
		t.Fatal("delete did not complete after guarded work finished")
	}
}

func TestSessionRepository_GuardDoesNotBlockOtherSessions(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	require.NoError(t, repo.Create(ctx, &domain.Session{ID: uuid.New(), TokenHash: "held", UserID: uuid.New()}))

	entered := make(chan struct{})
	release := make(chan struct{})
	guardDone := make(chan error, 1)
	go func() {
		guardDone <- repo.WithSession(ctx, "held", func(context.Context, *domain.Session) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered
	defer close(release)

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, repo.Create(ctx, &domain.Session{ID: uuid.New(), TokenHash: "other", UserID: uuid.New()}))
		assert.NoError(t, repo.WithSession(ctx, "other", func(context.Context, *domain.Session) error { return nil }))
		assert.NoError(t, repo.DeleteByTokenHash(ctx, "other"))
		_, err := repo.GetByTokenHash(ctx, "held")
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("work on another session waited for the guarded one")
	}
}

func TestSessionRepository_WithSessionAfterDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	require.NoError(t, repo.Create(ctx, &domain.Session{ID: uuid.New(), TokenHash: "gone", UserID: uuid.New()}))
	require.NoError(t, repo.DeleteByTokenHash(ctx, "gone"))

	called := false
	err := repo.WithSession(ctx, "gone", func(context.Context, *domain.Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, called)
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()
	base := time.Now()

	first := &domain.Post{ID: uuid.New(), Title: "first", CreatedAt: base}
	second := &domain.Post{ID: uuid.New(), Title: "second", CreatedAt: base.Add(time.Second)}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)

	first.Title = "edited"
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Title)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, first), domain.ErrNotFound)
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
