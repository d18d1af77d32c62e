package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dom/qa-assessment/internal/api"
	"github.com/dom/qa-assessment/internal/config"
	"github.com/dom/qa-assessment/internal/metrics"
	"github.com/dom/qa-assessment/internal/repository"
	"github.com/dom/qa-assessment/internal/repository/memory"
	repoPostgres "github.com/dom/qa-assessment/internal/repository/postgres"
	"github.com/dom/qa-assessment/internal/service"
	"github.com/dom/qa-assessment/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB starts a PostgreSQL container and returns a migrated
// connection. The test is skipped when no container runtime is available.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_blog"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	testDB := &TestDB{Container: container}
	t.Cleanup(testDB.Cleanup)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	testDB.DSN = dsn

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	testDB.DB = db

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"sessions", "posts", "users"} {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		Environment:        "test",
		LogLevel:           "debug",
		StoreBackend:       config.StoreMemory,
		BcryptCost:         bcrypt.MinCost,
		BookSearchURL:      "http://127.0.0.1:0/search.json",
		BookSearchTimeout:  2 * time.Second,
		CORSAllowedOrigins: []string{"http://localhost:4200"},
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Metrics  *metrics.Metrics
	Config   *config.Config
}

// NewTestServer starts the full router over in-memory repositories.
// configure may adjust the config before anything is built.
func NewTestServer(t *testing.T, configure ...func(*config.Config)) *TestServer {
	t.Helper()
	return NewTestServerWithRepos(t, memory.NewRepositories(), configure...)
}

// NewTestServerWithRepos is NewTestServer over caller-provided storage.
func NewTestServerWithRepos(t *testing.T, repos *repository.Repositories, configure ...func(*config.Config)) *TestServer {
	t.Helper()

	cfg := TestConfig()
	for _, fn := range configure {
		fn(cfg)
	}

	log := zap.NewNop()
	m := metrics.New()

	hub := websocket.NewHub(log, m)
	go hub.Run()

	services := service.NewServices(repos, cfg, hub, log, m)
	router := api.NewRouter(services, hub, cfg, log, m)

	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Metrics:  m,
		Config:   cfg,
	}
}

// URL returns the full URL for a given path
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// WebSocketURL returns the feed URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + strings.TrimPrefix(ts.Server.URL, "http")
	return fmt.Sprintf("%s/feed?token=%s", wsURL, token)
}
