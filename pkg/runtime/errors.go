// Package runtime provides connections, transactions and error classification
// for the supported database backends.
package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidModel is returned when an invalid model is provided.
	ErrInvalidModel = errors.New("invalid model")

	// ErrNoPrimaryKey is returned when a table has no primary key.
	ErrNoPrimaryKey = errors.New("no primary key defined")

	// ErrDuplicateKey is returned when a unique constraint is violated.
	ErrDuplicateKey = errors.New("duplicate key value")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrUndefinedTable is returned when a statement names a table that does not exist.
	ErrUndefinedTable = errors.New("table does not exist")

	// ErrTransactionClosed is returned when operating on a closed transaction.
	ErrTransactionClosed = errors.New("transaction already closed")

	// ErrNoConnection is returned when no database connection is available.
	ErrNoConnection = errors.New("no database connection")
)

// PostgreSQL SQLSTATE codes the runtime understands.
const (
	codeUndefinedTable      = "42P01"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// SQLite extended result codes.
const (
	sqliteConstraintForeignKey = 787
	sqliteConstraintUnique     = 2067
	sqliteConstraintPrimaryKey = 1555
)

// QueryError represents a query execution error.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// wrapQueryError attaches the query text and, when the driver error maps onto
// one of the sentinels above, the sentinel itself.
func wrapQueryError(query string, err error) error {
	if err == nil {
		return nil
	}
	if sentinel := classify(err); sentinel != nil {
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return &QueryError{Query: query, Err: err}
}

// classify maps a driver error onto a sentinel error, or nil.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUndefinedTable:
			return ErrUndefinedTable
		case codeForeignKeyViolation:
			return ErrForeignKeyViolation
		case codeUniqueViolation:
			return ErrDuplicateKey
		}
		return nil
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqliteConstraintForeignKey:
			return ErrForeignKeyViolation
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return ErrDuplicateKey
		}
	}

	// SQLite reports several conditions only through the message text.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return ErrUndefinedTable
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrForeignKeyViolation
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ErrDuplicateKey
	}
	return nil
}

// IsUndefinedTable reports whether err was caused by a missing table.
func IsUndefinedTable(err error) bool {
	return errors.Is(err, ErrUndefinedTable) || (err != nil && classify(err) == ErrUndefinedTable)
}

// IsForeignKeyViolation reports whether err was caused by a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return errors.Is(err, ErrForeignKeyViolation) || (err != nil && classify(err) == ErrForeignKeyViolation)
}
