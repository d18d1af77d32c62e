package service

import (
	"context"
	"time"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/repository"
	"github.com/google/uuid"
)

// PostPublisher receives post changes after they have been stored.
type PostPublisher interface {
	Publish(event domain.PostEvent)
}

// SessionRevoker closes long-lived subscriptions of a logged out session.
type SessionRevoker interface {
	RevokeSession(sessionKey string)
}

// Feed is what the live post feed offers the services.
type Feed interface {
	PostPublisher
	SessionRevoker
}

type PostService struct {
	postRepo  repository.PostRepository
	publisher PostPublisher
}

func NewPostService(postRepo repository.PostRepository, publisher PostPublisher) *PostService {
	return &PostService{postRepo: postRepo, publisher: publisher}
}

type CreatePostInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=10000"`
}

type UpdatePostInput struct {
	Title   *string `json:"title" validate:"omitnil,min=1,max=200"`
	Content *string `json:"content" validate:"omitnil,min=1,max=10000"`
}

func (s *PostService) List(ctx context.Context) ([]*domain.Post, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, input CreatePostInput) (*domain.Post, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	post := &domain.Post{
		ID:        uuid.New(),
		Title:     input.Title,
		Content:   input.Content,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.publish(domain.PostCreated, post)
	return post, nil
}

func (s *PostService) Update(ctx context.Context, actorID, id uuid.UUID, input UpdatePostInput) (*domain.Post, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	post, err := s.ownedPost(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	post.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.publish(domain.PostUpdated, post)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	post, err := s.ownedPost(ctx, actorID, id)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(domain.PostDeleted, post)
	return nil
}

func (s *PostService) ownedPost(ctx context.Context, actorID, id uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func (s *PostService) publish(eventType domain.PostEventType, post *domain.Post) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(domain.PostEvent{Type: eventType, Post: post})
}
