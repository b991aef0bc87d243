package database

import (
	"gorm.io/gorm"
)

// UnitOfWorkInterface abstracts transaction handling from the service layer.
// The sync pipeline uses it to commit a whole tick or nothing.
type UnitOfWorkInterface interface {
	Begin() *gorm.DB
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
}

type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(db *gorm.DB) UnitOfWorkInterface {
	return &unitOfWork{db: db}
}

func (uow *unitOfWork) Begin() *gorm.DB {
	return uow.db.Begin()
}

func (uow *unitOfWork) Commit(tx *gorm.DB) error {
	return tx.Commit().Error
}

// Rollback rolls back unless the transaction already finished.
func (uow *unitOfWork) Rollback(tx *gorm.DB) {
	if tx.Error == nil {
		tx.Rollback()
	}
}
