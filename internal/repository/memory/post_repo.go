package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/google/uuid"
)

type postRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]domain.Post
}

func NewPostRepository() *postRepository {
	return &postRepository{posts: make(map[uuid.UUID]domain.Post)}
}

func (r *postRepository) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts[post.ID] = *post
	return nil
}

func (r *postRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &post, nil
}

// List returns posts newest first.
func (r *postRepository) List(_ context.Context) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]*domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		p := p
		posts = append(posts, &p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (r *postRepository) Update(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.posts[post.ID]
	if !ok {
		return domain.ErrNotFound
	}
	current.Title = post.Title
	current.Content = post.Content
	current.UpdatedAt = post.UpdatedAt
	r.posts[post.ID] = current
	return nil
}

func (r *postRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}
