package api

import (
	"net/http"

	"github.com/dom/qa-assessment/internal/api/handlers"
	"github.com/dom/qa-assessment/internal/api/middleware"
	"github.com/dom/qa-assessment/internal/config"
	"github.com/dom/qa-assessment/internal/metrics"
	"github.com/dom/qa-assessment/internal/service"
	"github.com/dom/qa-assessment/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Metrics(m))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	authHandler := handlers.NewAuthHandler(services.Auth, log)
	userHandler := handlers.NewUserHandler(services.User, services.Auth, log)
	postHandler := handlers.NewPostHandler(services.Post, services.Auth, log)
	bookHandler := handlers.NewBookHandler(services.Book, log)
	feedHandler := handlers.NewFeedHandler(hub, services.Auth, log)

	// Public routes
	r.Post("/users", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	// Authenticates itself so the token can arrive as a query parameter.
	r.Get("/feed", feedHandler.Handle)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(services.Auth, log))

		r.Post("/auth/logout", authHandler.Logout)

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/", userHandler.Get)
			r.Put("/", userHandler.Update)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.List)
			r.Post("/", postHandler.Create)
			r.Get("/{postId}", postHandler.Get)
			r.Put("/{postId}", postHandler.Update)
			r.Delete("/{postId}", postHandler.Delete)
		})

		r.Get("/books/search", bookHandler.Search)
	})

	return r
}
