package runtime

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Tx is a driver-neutral transaction. Errors returned by Exec and Query are
// *QueryError values that wrap the matching sentinel (ErrUndefinedTable,
// ErrForeignKeyViolation, ErrDuplicateKey) when one applies.
type Tx interface {
	// Exec executes a statement and returns the number of affected rows.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	// Query executes a statement that returns rows.
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	// Commit commits the transaction.
	Commit(ctx context.Context) error
	// Rollback rolls the transaction back. Rolling back a finished
	// transaction returns ErrTransactionClosed.
	Rollback(ctx context.Context) error
}

// Rows is a driver-neutral result set.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	// Columns returns the result column names in order.
	Columns() []string
	Err() error
	Close()
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, wrapQueryError(query, err)
	}
	return tag.RowsAffected(), nil
}

func (t *pgxTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError(query, err)
	}
	return &pgxRows{rows: rows, query: query}, nil
}

func (t *pgxTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return ErrTransactionClosed
		}
		return wrapQueryError("COMMIT", err)
	}
	return nil
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return ErrTransactionClosed
		}
		return err
	}
	return nil
}

type pgxRows struct {
	rows  pgx.Rows
	query string
}

func (r *pgxRows) Next() bool { return r.rows.Next() }

func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }

func (r *pgxRows) Columns() []string {
	fields := r.rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = fd.Name
	}
	return names
}

// Err reports errors raised while iterating, e.g. constraint failures of an
// INSERT ... RETURNING that only surface once the rows are read.
func (r *pgxRows) Err() error { return wrapQueryError(r.query, r.rows.Err()) }

func (r *pgxRows) Close() { r.rows.Close() }

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapQueryError(query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError(query, err)
	}
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, wrapQueryError(query, err)
	}
	return &sqlRows{rows: rows, cols: cols, query: query}, nil
}

func (t *sqlTx) Commit(context.Context) error {
	if err := t.tx.Commit(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return ErrTransactionClosed
		}
		return wrapQueryError("COMMIT", err)
	}
	return nil
}

func (t *sqlTx) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return ErrTransactionClosed
		}
		return err
	}
	return nil
}

type sqlRows struct {
	rows  *sql.Rows
	cols  []string
	query string
}

func (r *sqlRows) Next() bool { return r.rows.Next() }

func (r *sqlRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }

func (r *sqlRows) Columns() []string { return r.cols }

func (r *sqlRows) Err() error { return wrapQueryError(r.query, r.rows.Err()) }

func (r *sqlRows) Close() { _ = r.rows.Close() }
