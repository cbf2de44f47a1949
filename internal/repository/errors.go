package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Shared sentinel errors for the repository layer.
var (
	ErrJobNotFound = errors.New("upload job not found")

	// Natural-key conflicts surfaced by provisioning inserts. Explicit
	// duplicate checks run first; these map the database constraints that
	// back them up.
	ErrAccountEmailTaken = errors.New("an account with this email already exists")
	ErrRollNumberTaken   = errors.New("a student with this roll number already exists")
	ErrEmployeeIDTaken   = errors.New("a trainer with this employee id already exists")
)

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, optionally on a specific constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
