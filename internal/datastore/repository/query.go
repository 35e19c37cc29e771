package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/labelquorum/quorum/internal/errors"
)

// idBatchSize keeps IN lists under SQLite's 999 parameter limit.
const idBatchSize = 500

// first loads one row matching q, mapping a missing row to notFound.
func first[T any](q *gorm.DB, notFound error) (*T, error) {
	var v T
	err := q.First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// forUpdate adds a row lock. The SQLite dialect drops the clause; there the
// immediate transaction already holds the database write lock.
func forUpdate(q *gorm.DB) *gorm.DB {
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

func shareLock(q *gorm.DB) *gorm.DB {
	return q.Clauses(clause.Locking{Strength: "SHARE"})
}

// create inserts v, translating unique violations into ErrDuplicateKey.
func create(q *gorm.DB, v any) error {
	err := q.Create(v).Error
	if err != nil && isDuplicateKey(err) {
		return duplicateKey(err)
	}
	return err
}
