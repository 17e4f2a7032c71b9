package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories are repositories bound to a single transaction
type TxRepositories struct {
	Notes NoteRepository
	Tags  TagRepository
}

// UnitOfWork runs a function inside one database transaction. If fn returns
// an error or ctx is cancelled, nothing fn wrote is committed.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos TxRepositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a transaction runner on db
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(repos TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Notes: NewNoteRepository(tx),
			Tags:  NewTagRepository(tx),
		})
	})
}
