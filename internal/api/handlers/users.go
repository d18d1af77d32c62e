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

const userNotFound = "User not found"

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
	log         *zap.Logger
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
		log:         log.Named("handlers.users"),
	}
}

type UserResponse struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	FavoriteBook *domain.Book `json:"favoriteBook"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, userNotFound)
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err, userNotFound)
		return
	}

	writeJSON(w, http.StatusOK, h.toUserResponse(user))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, userNotFound)
		return
	}

	var input service.UpdateUserInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, h.log, err, userNotFound)
		return
	}

	var user *domain.User
	err = h.authService.Guard(r.Context(), ac, func(ctx context.Context) error {
		var err error
		user, err = h.userService.UpdateUser(ctx, ac.UserID, id, input)
		return err
	})
	if err != nil {
		writeError(w, h.log, err, userNotFound)
		return
	}

	writeJSON(w, http.StatusOK, h.toUserResponse(user))
}

func (h *UserHandler) toUserResponse(u *domain.User) UserResponse {
	book, err := u.Book()
	if err != nil {
		h.log.Warn("stored favorite book is unreadable", zap.Stringer("user_id", u.ID), zap.Error(err))
	}
	return UserResponse{
		ID:           u.ID.String(),
		Username:     u.Username,
		FavoriteBook: book,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
