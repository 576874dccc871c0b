package builder

import (
	"context"
	"fmt"

	"github.com/LadyAlena/sql-homeworks-6/pkg/registry"
	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
	"github.com/LadyAlena/sql-homeworks-6/pkg/schema"
)

// Tx wraps a runtime transaction and provides query builder methods.
type Tx struct {
	tx       runtime.Tx
	dialect  runtime.Dialect
	registry *registry.Registry
}

// Dialect returns the SQL dialect statements are rendered in.
func (t *Tx) Dialect() runtime.Dialect {
	return t.dialect
}

// Registry returns the model registry of the transaction.
func (t *Tx) Registry() *registry.Registry {
	return t.registry
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Exec runs a raw statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return t.tx.Exec(ctx, sql, args...)
}

// Savepoint creates a savepoint within the transaction.
func (t *Tx) Savepoint(ctx context.Context, name string) error {
	if _, err := t.tx.Exec(ctx, fmt.Sprintf("SAVEPOINT %s", name)); err != nil {
		return fmt.Errorf("failed to create savepoint %s: %w", name, err)
	}
	return nil
}

// RollbackToSavepoint rolls back to a savepoint.
func (t *Tx) RollbackToSavepoint(ctx context.Context, name string) error {
	if _, err := t.tx.Exec(ctx, fmt.Sprintf("ROLLBACK TO SAVEPOINT %s", name)); err != nil {
		return fmt.Errorf("failed to rollback to savepoint %s: %w", name, err)
	}
	return nil
}

// ReleaseSavepoint releases a savepoint.
func (t *Tx) ReleaseSavepoint(ctx context.Context, name string) error {
	if _, err := t.tx.Exec(ctx, fmt.Sprintf("RELEASE SAVEPOINT %s", name)); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	return nil
}

// tableFor resolves the metadata of T through the transaction registry.
func tableFor[T any](t *Tx) (*schema.TableMetadata, error) {
	var model T
	table, err := t.registry.GetOrRegister(model)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", runtime.ErrInvalidModel, err)
	}
	return table, nil
}

// TxSelect creates a new type-safe SELECT query within the transaction.
// Usage: builder.TxSelect[Book](tx).Where(builder.Eq("publisher_id", id)).All(ctx)
func TxSelect[T any](t *Tx) *TxSelectQuery[T] {
	table, err := tableFor[T](t)
	return &TxSelectQuery[T]{
		tx:      t,
		table:   table,
		err:     err,
		columns: []string{"*"},
		where:   make([]Condition, 0),
		orderBy: make([]OrderBy, 0),
	}
}

// TxInsert creates a new type-safe INSERT query within the transaction.
// Usage: builder.TxInsert[Book](tx).Values(book).ExecReturning(ctx)
func TxInsert[T any](t *Tx) *TxInsertQuery[T] {
	table, err := tableFor[T](t)
	return &TxInsertQuery[T]{
		tx:        t,
		table:     table,
		err:       err,
		values:    make([]T, 0),
		returning: make([]string, 0),
	}
}
