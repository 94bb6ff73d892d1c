package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

type txKey struct{}

// GormTransactor runs units of work in one database transaction
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a new GORM transactor
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// WithinTx opens a transaction and hands fn a context carrying it.
// When ctx already carries one, fn joins it.
func (t *GormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db bound to ctx
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// forUpdate row-locks the selected rows until the transaction ends.
// SQLite has no row locks and serializes writers instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// guardedUpdate writes fields only if the row still has the expected version
// and bumps it. A miss means another transaction committed first.
func guardedUpdate(db *gorm.DB, model interface{}, entity, id string, version int, fields map[string]interface{}) error {
	fields["version"] = version + 1
	result := db.Model(model).Where("id = ? AND version = ?", id, version).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", entity, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrentModificationError(entity, id)
	}
	return nil
}

// appendOnly inserts rows that may already exist from an earlier write
func appendOnly(db *gorm.DB, rows interface{}) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error
}
