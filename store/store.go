// Package store implements the persistence interfaces of the domain packages
// on top of gorm and Postgres.
package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
)

var ErrDuplicate = apperr.New(apperr.Conflict, "duplicate", "record already exists")

// classify passes domain errors through and turns everything else into an
// internal error. Unique violations become ErrDuplicate.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if name, ok := UniqueViolation(err); ok {
		return ErrDuplicate.WithMessage(op + ": duplicate value for " + name).Wrap(err)
	}
	return apperr.WrapInternal(op, err)
}

// UniqueViolation reports whether err is a Postgres unique violation and
// returns the violated constraint name.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// ForeignKeyViolation reports whether err is a Postgres foreign key violation.
func ForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
