package uow

import (
	"context"

	"gorm.io/gorm"

	"gentletalk/internal/ports"
)

// UnitOfWork implements ports.UnitOfWork with gorm.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithTx runs fn in a transaction. When ctx already carries one, fn joins it through a savepoint.
func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db := u.db
	if tx, ok := ports.TxFromContext(ctx).(*gorm.DB); ok && tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx))
	})
}
