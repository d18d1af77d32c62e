package postgres

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// dbFrom returns the transaction carried by ctx, or db when there is none.
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func (r *userRepository) conn(ctx context.Context) *gorm.DB    { return dbFrom(ctx, r.db) }
func (r *sessionRepository) conn(ctx context.Context) *gorm.DB { return dbFrom(ctx, r.db) }
func (r *postRepository) conn(ctx context.Context) *gorm.DB    { return dbFrom(ctx, r.db) }
