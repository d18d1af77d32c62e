package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dom/qa-assessment/internal/api/middleware"
	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const postNotFound = "Post not found"

type PostHandler struct {
	postService *service.PostService
	authService *service.AuthService
	log         *zap.Logger
}

func NewPostHandler(postService *service.PostService, authService *service.AuthService, log *zap.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		authService: authService,
		log:         log.Named("handlers.posts"),
	}
}

// CreatePostRequest mirrors CredentialsRequest: pointers tell an absent
// field from an empty one.
type CreatePostRequest struct {
	Title   *string `json:"title" validate:"required,min=1"`
	Content *string `json:"content" validate:"required,min=1"`
}

type PostResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context())
	if err != nil {
		writeError(w, h.log, err, postNotFound)
		return
	}

	resp := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, toPostResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "postId"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, postNotFound)
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err, postNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(post))
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.log, err, postNotFound)
		return
	}
	if err := service.Validate(req); err != nil {
		writeError(w, h.log, err, postNotFound)
		return
	}
	input := service.CreatePostInput{Title: *req.Title, Content: *req.Content}

	var post *domain.Post
	err := h.authService.Guard(r.Context(), ac, func(ctx context.Context) error {
		var err error
		post, err = h.postService.Create(ctx, ac.UserID, input)
		return err
	})
	if err != nil {
		writeError(w, h.log, err, postNotFound)
		return
	}

	writeJSON(w, http.StatusCreated, toPostResponse(post))
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "postId"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, postNotFound)
		return
	}

	var input service.UpdatePostInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, h.log, err, postNotFound)
		return
	}

	var post *domain.Post
	err = h.authService.Guard(r.Context(), ac, func(ctx context.Context) error {
		var err error
		post, err = h.postService.Update(ctx, ac.UserID, id, input)
		return err
	})
	if err != nil {
		writeError(w, h.log, err, postNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(post))
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "postId"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, postNotFound)
		return
	}

	err = h.authService.Guard(r.Context(), ac, func(ctx context.Context) error {
		return h.postService.Delete(ctx, ac.UserID, id)
	})
	if err != nil {
		writeError(w, h.log, err, postNotFound)
		return
	}

	writeMessage(w, http.StatusOK, "Post deleted")
}

func toPostResponse(p *domain.Post) PostResponse {
	return PostResponse{
		ID:        p.ID.String(),
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID.String(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
