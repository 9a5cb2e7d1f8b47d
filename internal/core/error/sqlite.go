package errx

import (
	"database/sql"
	"errors"
	"net/http"
)

// WrapSQLite maps SQLite errors to the unified Error type. sql.ErrNoRows is
// not expected here; cache lookups translate it into a plain miss before
// error mapping applies.
func WrapSQLite(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return New(err, http.StatusNotFound, CacheErrorMessage)
	}

	return New(err, http.StatusInternalServerError, CacheErrorMessage)
}
