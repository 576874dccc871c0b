package builder

import (
	"context"
	"fmt"

	"github.com/LadyAlena/sql-homeworks-6/pkg/registry"
	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
)

// DB wraps runtime.DB and provides query builder methods.
type DB struct {
	db       *runtime.DB
	registry *registry.Registry
}

// New creates a new query builder DB from a runtime DB. Models are resolved
// through reg, which should already hold them in creation order.
func New(db *runtime.DB, reg *registry.Registry) *DB {
	if reg == nil {
		reg = registry.NewRegistry()
	}
	return &DB{db: db, registry: reg}
}

// Runtime returns the underlying runtime.DB.
func (d *DB) Runtime() *runtime.DB {
	return d.db
}

// Registry returns the model registry used by queries.
func (d *DB) Registry() *registry.Registry {
	return d.registry
}

// Begin starts a new transaction.
func (d *DB) Begin(ctx context.Context) (*Tx, error) {
	return d.BeginTx(ctx, runtime.TxOptions{})
}

// BeginTx starts a new transaction with custom options.
func (d *DB) BeginTx(ctx context.Context, opts runtime.TxOptions) (*Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, dialect: d.db.Dialect(), registry: d.registry}, nil
}
