package service

import (
	"github.com/dom/qa-assessment/internal/config"
	"github.com/dom/qa-assessment/internal/metrics"
	"github.com/dom/qa-assessment/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Auth *AuthService
	User *UserService
	Post *PostService
	Book *BookService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, feed Feed, log *zap.Logger, m *metrics.Metrics) *Services {
	credentials := NewCredentialStore(repos.User, cfg.BcryptCost)
	sessions := NewSessionStore(repos.Session)

	return &Services{
		Auth: NewAuthService(credentials, sessions, feed, log, m),
		User: NewUserService(repos.User),
		Post: NewPostService(repos.Post, feed),
		Book: NewBookService(cfg.BookSearchURL, cfg.BookSearchTimeout, log),
	}
}
