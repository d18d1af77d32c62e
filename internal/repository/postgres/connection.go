package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/repository"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens the database, retrying with exponential backoff
// while the server is still coming up.
func NewConnection(ctx context.Context, databaseURL string, retries uint64, log *zap.Logger) (*gorm.DB, error) {
	backoff := retry.WithMaxRetries(retries, retry.NewExponential(500*time.Millisecond))

	var db *gorm.DB
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			log.Warn("database not ready", zap.Error(err))
			return retry.RetryableError(err)
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the tables backing the repositories.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.Post{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Session: NewSessionRepository(db),
		Post:    NewPostRepository(db),
	}
}
