package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/qa-assessment/internal/api"
	"github.com/dom/qa-assessment/internal/config"
	"github.com/dom/qa-assessment/internal/logging"
	"github.com/dom/qa-assessment/internal/metrics"
	"github.com/dom/qa-assessment/internal/repository"
	"github.com/dom/qa-assessment/internal/repository/memory"
	"github.com/dom/qa-assessment/internal/repository/postgres"
	"github.com/dom/qa-assessment/internal/service"
	"github.com/dom/qa-assessment/internal/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	cmd.Flags().String("store", "", "storage backend: memory or postgres (overrides STORE_BACKEND)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}

	m := metrics.New()

	hub := websocket.NewHub(log, m)
	go hub.Run()
	defer hub.Stop()

	services := service.NewServices(repos, cfg, hub, log, m)
	router := api.NewRouter(services, hub, cfg, log, m)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("server stopped")
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Repositories, error) {
	if cfg.StoreBackend == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		return memory.NewRepositories(), nil
	}

	db, err := postgres.NewConnection(ctx, cfg.DatabaseURL, cfg.DBConnectRetries, log)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return postgres.NewRepositories(db), nil
}
