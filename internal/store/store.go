// Package store holds the sqlx-backed persistence for every Cleo entity.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert or update violates a unique constraint.
	ErrConflict = errors.New("already exists")
)

// DB is satisfied by both *sqlx.DB and *sqlx.Tx, so every store can run
// inside or outside a transaction.
type DB interface {
	sqlx.ExtContext
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// conflict maps unique constraint violations to ErrConflict.
func conflict(err error) error {
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// affectedOne returns ErrNotFound when res touched no rows.
func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// execOnly drops the result of an UPDATE. MySQL reports zero affected rows
// when the new value equals the old one, so callers check existence first.
func execOnly(_ sql.Result, err error) error {
	return err
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
