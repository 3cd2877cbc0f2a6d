package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrorClassification is the result type returned by
// [SQLiteErrorClassifier.Classify]. It indicates whether a failed database
// operation should be retried or abandoned.
type ErrorClassification int

const (
	// NonRetryable indicates that the failed operation should not be retried.
	// This is the default classification for unrecognised errors, constraint
	// violations, and malformed statements.
	NonRetryable ErrorClassification = iota

	// Retryable indicates that the failed operation may succeed if attempted
	// again, typically after another connection releases its lock on the
	// database file.
	Retryable
)

// ErrorClassificator classifies low-level database errors so that callers can
// decide on a retry without depending on the driver's error types.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// SQLiteErrorClassifier implements [ErrorClassificator] for the
// mattn/go-sqlite3 driver. It inspects the sqlite3 result code and maps it to
// an [ErrorClassification] value.
type SQLiteErrorClassifier struct{}

// NewSQLiteErrorClassifier constructs a [SQLiteErrorClassifier] ready for use.
func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// Classify implements [ErrorClassificator]. It attempts to unwrap err as a
// sqlite3.Error and delegates to [ClassifySQLiteError]. If err is nil or is
// not a SQLite driver error, [NonRetryable] is returned.
func (c *SQLiteErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return ClassifySQLiteError(sqErr)
	}

	return NonRetryable
}

// ClassifySQLiteError maps a sqlite3.Error to an [ErrorClassification] based
// on the primary result code.
//
// Retryable codes:
//   - SQLITE_BUSY: another connection holds the file lock
//   - SQLITE_LOCKED: a table is locked within the same connection
//
// Everything else, notably SQLITE_CONSTRAINT, is [NonRetryable].
func ClassifySQLiteError(sqErr sqlite3.Error) ErrorClassification {
	switch sqErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return Retryable
	default:
		return NonRetryable
	}
}

// mapConstraint converts a uniqueness violation into [ErrAlreadyExists] so
// callers can match with errors.Is. Any other error is returned unchanged.
func mapConstraint(err error) error {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) && sqErr.Code == sqlite3.ErrConstraint {
		return ErrAlreadyExists
	}
	return err
}
