package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgreSQL error codes checked by the provisioning interceptors.
const (
	CodeDuplicateDatabase = "42P04"
	CodeInvalidCatalog    = "3D000"
)

// SQLState returns the PostgreSQL error code carried by err, or "" when err
// did not come from the server. Both the pgx and lib/pq drivers are handled.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

// IsDuplicateDatabase reports whether err means CREATE DATABASE hit an
// existing database.
func IsDuplicateDatabase(err error) bool {
	return SQLState(err) == CodeDuplicateDatabase
}

// IsMissingDatabase reports whether err means the database does not exist.
func IsMissingDatabase(err error) bool {
	return SQLState(err) == CodeInvalidCatalog
}
