package handlers

import (
	"net/http"

	"github.com/dom/qa-assessment/internal/api/middleware"
	"github.com/dom/qa-assessment/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log.Named("handlers.auth")}
}

// CredentialsRequest uses pointers so an absent field is reported as
// missing rather than as an empty string. required only checks the
// pointer; min=1 rejects an empty value.
type CredentialsRequest struct {
	Username *string `json:"username" validate:"required,min=1"`
	Password *string `json:"password" validate:"required,min=1"`
}

type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeCredentials(w, r)
	if err != nil {
		writeError(w, h.log, err, "")
		return
	}

	result, err := h.authService.RegisterUser(r.Context(), service.RegisterInput{
		Username: *req.Username,
		Password: *req.Password,
	})
	if err != nil {
		writeError(w, h.log, err, "")
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeCredentials(w, r)
	if err != nil {
		writeError(w, h.log, err, "")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: *req.Username,
		Password: *req.Password,
	})
	if err != nil {
		writeError(w, h.log, err, "")
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.authService.Logout(r.Context(), ac.Token); err != nil {
		writeError(w, h.log, err, "")
		return
	}

	writeMessage(w, http.StatusOK, "Logged out")
}

func (h *AuthHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (*CredentialsRequest, error) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if err := service.Validate(req); err != nil {
		return nil, err
	}
	return &req, nil
}

func toAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{Token: result.Token, UserID: result.UserID.String()}
}
