package db

import (
	"context"

	"gorm.io/gorm"
)

// WithTransaction runs fn inside one transaction: commit when fn returns nil,
// rollback on error or panic.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
