package postgres

import (
	"context"

	"github.com/dom/qa-assessment/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.conn(ctx).Create(session).Error
}

func (r *sessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	if err := r.conn(ctx).First(&session, "token_hash = ?", tokenHash).Error; err != nil {
		return nil, translateError(err)
	}
	return &session, nil
}

func (r *sessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return r.conn(ctx).Delete(&domain.Session{}, "token_hash = ?", tokenHash).Error
}

// WithSession holds a FOR SHARE row lock for the duration of fn, so a
// concurrent DeleteByTokenHash blocks until fn has returned. fn's ctx
// carries the transaction; writes made through it share its connection.
func (r *sessionRepository) WithSession(ctx context.Context, tokenHash string, fn func(context.Context, *domain.Session) error) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var session domain.Session
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			First(&session, "token_hash = ?", tokenHash).Error
		if err != nil {
			return translateError(err)
		}
		return fn(withTx(ctx, tx), &session)
	})
}
