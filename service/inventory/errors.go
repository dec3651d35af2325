package inventory

import (
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidQuantity       ErrCode = "INVALID_QUANTITY"
	ErrInvalidCount          ErrCode = "INVALID_COUNT"
	ErrInvalidStatus         ErrCode = "INVALID_STATUS"
	ErrInsufficientAvailable ErrCode = "INSUFFICIENT_AVAILABLE"
	ErrNoAvailableUnits      ErrCode = "NO_AVAILABLE_UNITS"
	ErrNoRentedUnits         ErrCode = "NO_RENTED_UNITS"
	ErrNotFound              ErrCode = "NOT_FOUND"
	ErrStorageUnavailable    ErrCode = "STORAGE_UNAVAILABLE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// wrapDB maps driver connectivity failures to STORAGE_UNAVAILABLE so callers
// can distinguish "the store is down" from domain errors. Anything else
// passes through untouched.
func wrapDB(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsConnectionException(pgErr.Code) {
		return makeErr(ErrStorageUnavailable)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return makeErr(ErrStorageUnavailable)
	}
	return err
}
