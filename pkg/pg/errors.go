package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidConnectionString = errors.New("pg: invalid connection string")
	ErrConnectionFailed        = errors.New("pg: connection attempts exhausted")
	ErrHealthcheckFailed       = errors.New("pg: healthcheck failed")
	ErrMigrationsFailed        = errors.New("pg: failed to apply migrations")
	ErrMigrationsDirNotFound   = errors.New("pg: migrations directory not found")
)

// IsNotFound reports whether err is the pgx no-rows result.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique constraint violation
// (SQLSTATE 23505), e.g. a duplicate push subscription endpoint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
