package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	AuthContextKey contextKey = "authContext"
)

// Authenticator resolves a raw session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.AuthContext, error)
}

// Auth rejects requests without a live session with 401 and otherwise
// attaches the caller's AuthContext. The token is the raw Authorization
// header value; a "Bearer " prefix is tolerated.
func Auth(authenticator Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	log = log.Named("middleware.auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromHeader(r)
			if token == "" {
				log.Debug("missing authorization header", zap.String("path", r.URL.Path))
				unauthorized(w)
				return
			}

			ac, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					log.Debug("unknown session token", zap.String("path", r.URL.Path))
				} else {
					log.Error("session lookup failed", zap.Error(err))
				}
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), ac)))
		})
	}
}

func TokenFromHeader(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

func WithAuthContext(ctx context.Context, ac domain.AuthContext) context.Context {
	return context.WithValue(ctx, AuthContextKey, ac)
}

func GetAuthContext(ctx context.Context) (domain.AuthContext, bool) {
	ac, ok := ctx.Value(AuthContextKey).(domain.AuthContext)
	return ac, ok
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	ac, ok := GetAuthContext(ctx)
	return ac.UserID, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
}
