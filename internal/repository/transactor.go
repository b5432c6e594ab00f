package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxFunc is one mutation inside a unit of work.
type TxFunc func(tx *gorm.DB) error

type Transactor interface {
	// Run executes every step in one transaction. Any error rolls back all of them.
	Run(ctx context.Context, steps ...TxFunc) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Run(ctx context.Context, steps ...TxFunc) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range steps {
			if err := step(tx); err != nil {
				return err
			}
		}
		return nil
	})
}
