// Package errors provides cleanup helpers that log instead of dropping errors.
package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// DeferClose closes closer and logs a failure at warn level.
// Use this in defer statements where the close error cannot be returned.
func DeferClose(logger zerolog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// CloseInto closes closer and stores a failure in *errp unless *errp already
// holds an error. Use it with a named error result:
//
//	defer errors.CloseInto(&err, f, "failed to close report")
func CloseInto(errp *error, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil && *errp == nil {
		*errp = fmt.Errorf("%s: %w", msg, err)
	}
}

// DeferRollback rolls back tx and logs a failure. sql.ErrTxDone, returned
// after a successful commit, is ignored.
func DeferRollback(logger zerolog.Logger, tx *sql.Tx) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Warn().Err(err).Msg("transaction rollback failed")
	}
}

// Must panics if err is not nil. Use only where failure is a programming error,
// such as registering flags.
func Must(err error, msg string) {
	if err != nil {
		panic(fmt.Sprintf("%s: %v", msg, err))
	}
}
