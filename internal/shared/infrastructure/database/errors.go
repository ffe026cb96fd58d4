package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNoRows is the driver-neutral not-found error for single-row queries.
var ErrNoRows = errors.New("no rows in result set")

// IsNoRows reports whether err is a not-found result from either driver.
func IsNoRows(err error) bool {
	return err != nil &&
		(errors.Is(err, ErrNoRows) ||
			errors.Is(err, pgx.ErrNoRows) ||
			errors.Is(err, sql.ErrNoRows))
}
