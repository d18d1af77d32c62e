package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	credentials *CredentialStore
	sessions    *SessionStore
	revoker     SessionRevoker
	log         *zap.Logger
	metrics     *metrics.Metrics
}

// NewAuthService builds the service. revoker may be nil when nothing holds
// sessions open beyond a single request.
func NewAuthService(credentials *CredentialStore, sessions *SessionStore, revoker SessionRevoker, log *zap.Logger, m *metrics.Metrics) *AuthService {
	return &AuthService{
		credentials: credentials,
		sessions:    sessions,
		revoker:     revoker,
		log:         log.Named("auth"),
		metrics:     m,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type AuthResult struct {
	Token  string
	UserID uuid.UUID
}

func (s *AuthService) RegisterUser(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	user, err := s.credentials.Register(ctx, input.Username, input.Password)
	if err != nil {
		s.metrics.RecordAuth("register", metrics.OutcomeFailure)
		if !errors.Is(err, domain.ErrDuplicateUsername) {
			s.log.Error("register failed", zap.String("username", input.Username), zap.Error(err))
		}
		return nil, err
	}

	result, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAuth("register", metrics.OutcomeSuccess)
	s.log.Info("user registered", zap.Stringer("user_id", user.ID))
	return result, nil
}

// Login issues a fresh session on every success; earlier tokens of the
// same user stay valid until they are logged out.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	user, err := s.credentials.VerifyCredentials(ctx, input.Username, input.Password)
	if err != nil {
		s.metrics.RecordAuth("login", metrics.OutcomeFailure)
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			s.log.Error("login failed", zap.Error(err))
		}
		return nil, err
	}

	result, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAuth("login", metrics.OutcomeSuccess)
	return result, nil
}

// Logout reports success whether or not token was live. Feed connections
// opened with token are closed before it returns.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Invalidate(ctx, token); err != nil {
		s.log.Error("logout failed", zap.Error(err))
		return err
	}
	if s.revoker != nil {
		s.revoker.RevokeSession(SessionKey(token))
	}
	s.metrics.RecordAuth("logout", metrics.OutcomeSuccess)
	return nil
}

// Authenticate resolves a token into the identity of its owner. An unknown
// token yields domain.ErrUnauthenticated; storage failures are wrapped and
// must not be shown to clients.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.AuthContext, error) {
	userID, err := s.sessions.Resolve(ctx, token)
	if errors.Is(err, domain.ErrInvalidSession) {
		return domain.AuthContext{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.AuthContext{}, fmt.Errorf("authenticate: %w", err)
	}
	return domain.AuthContext{UserID: userID, Token: token}, nil
}

// Guard re-validates ac's session and runs fn while the session cannot be
// invalidated. Used around mutations so that a request resolved before a
// concurrent logout does not write after that logout returned.
func (s *AuthService) Guard(ctx context.Context, ac domain.AuthContext, fn func(ctx context.Context) error) error {
	err := s.sessions.Guard(ctx, ac.Token, func(ctx context.Context, userID uuid.UUID) error {
		if userID != ac.UserID {
			return domain.ErrUnauthenticated
		}
		return fn(ctx)
	})
	if errors.Is(err, domain.ErrInvalidSession) {
		return domain.ErrUnauthenticated
	}
	return err
}

func (s *AuthService) startSession(ctx context.Context, userID uuid.UUID) (*AuthResult, error) {
	_, token, err := s.sessions.Create(ctx, userID)
	if err != nil {
		s.log.Error("session create failed", zap.Stringer("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &AuthResult{Token: token, UserID: userID}, nil
}
