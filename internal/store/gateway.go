// Package store is the persistence gateway of bookdist. A Gateway owns one
// transaction for its whole life: every table reset, insert and lookup goes
// through it, and nothing is visible to other sessions until Commit.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LadyAlena/sql-homeworks-6/internal/metrics"
	"github.com/LadyAlena/sql-homeworks-6/internal/telemetry"
	"github.com/LadyAlena/sql-homeworks-6/pkg/builder"
	"github.com/LadyAlena/sql-homeworks-6/pkg/ddl"
	"github.com/LadyAlena/sql-homeworks-6/pkg/registry"
	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
	"github.com/LadyAlena/sql-homeworks-6/pkg/schema"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = runtime.ErrNotFound

	// ErrUnknownColumn is returned when a lookup names a column the table
	// does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrClosed is returned when the gateway transaction has already ended.
	ErrClosed = errors.New("gateway closed")
)

// Gateway is the single-transaction access point to the book tables.
type Gateway struct {
	tx       *builder.Tx
	registry *registry.Registry
	planner  *ddl.Planner
	logger   zerolog.Logger
	metrics  *metrics.Recorder
	tracer   trace.Tracer
	closed   bool
}

type options struct {
	metrics  *metrics.Recorder
	readOnly bool
}

// Option configures Open.
type Option func(*options)

// WithMetrics counts inserts, lookups and schema drops on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

// WithReadOnly opens a read-only transaction where the backend supports it.
func WithReadOnly() Option {
	return func(o *options) { o.readOnly = true }
}

// Open begins the gateway transaction. reg must hold the models in creation
// order. Callers must defer Close.
func Open(ctx context.Context, db *runtime.DB, reg *registry.Registry, logger zerolog.Logger, opts ...Option) (*Gateway, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tx, err := builder.New(db, reg).BeginTx(ctx, runtime.TxOptions{ReadOnly: o.readOnly})
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("driver", string(db.Driver())).Bool("read_only", o.readOnly).Msg("transaction started")

	return &Gateway{
		tx:       tx,
		registry: reg,
		planner:  ddl.NewPlanner(db.Dialect()),
		logger:   logger,
		metrics:  o.metrics,
		tracer:   telemetry.Tracer(),
	}, nil
}

// Registry returns the model registry of the gateway.
func (g *Gateway) Registry() *registry.Registry {
	return g.registry
}

// ResetSchema drops every table in reverse creation order and recreates them
// in creation order. A table that does not exist is logged and skipped; any
// other failure aborts the reset.
func (g *Gateway) ResetSchema(ctx context.Context) (err error) {
	if g.closed {
		return ErrClosed
	}
	ctx, span := g.tracer.Start(ctx, "store.ResetSchema")
	defer func() { telemetry.End(span, err) }()

	for _, table := range g.registry.DropOrder() {
		if err := g.dropTable(ctx, table.Name); err != nil {
			return err
		}
	}

	tables := g.registry.Tables()

	for i, stmt := range g.planner.CreateStatements(tables) {
		if _, err := g.tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", tables[i].Name, err)
		}
		g.logger.Debug().Str("table", tables[i].Name).Msg("table created")
	}

	span.SetAttributes(attribute.Int("tables", len(tables)))
	g.logger.Info().Int("tables", len(tables)).Msg("schema reset")
	return nil
}

// dropTable drops one table inside its own savepoint so that a missing table
// does not abort the surrounding transaction.
func (g *Gateway) dropTable(ctx context.Context, name string) error {
	savepoint := "drop_" + name

	if err := g.tx.Savepoint(ctx, savepoint); err != nil {
		return err
	}

	_, err := g.tx.Exec(ctx, g.planner.DropTable(name))
	switch {
	case err == nil:
		g.metrics.TableDropped(false)
		g.logger.Debug().Str("table", name).Msg("table dropped")
	case runtime.IsUndefinedTable(err):
		if rbErr := g.tx.RollbackToSavepoint(ctx, savepoint); rbErr != nil {
			return rbErr
		}
		g.metrics.TableDropped(true)
		g.logger.Warn().Str("table", name).Msg("table does not exist")
	default:
		return fmt.Errorf("drop table %s: %w", name, err)
	}

	return g.tx.ReleaseSavepoint(ctx, savepoint)
}

// Commit makes every change of the gateway durable.
func (g *Gateway) Commit(ctx context.Context) error {
	if g.closed {
		return ErrClosed
	}
	g.closed = true
	if err := g.tx.Commit(ctx); err != nil {
		return err
	}
	g.logger.Debug().Msg("transaction committed")
	return nil
}

// Rollback discards every change of the gateway.
func (g *Gateway) Rollback(ctx context.Context) error {
	if g.closed {
		return ErrClosed
	}
	g.closed = true
	if err := g.tx.Rollback(ctx); err != nil {
		return err
	}
	g.logger.Debug().Msg("transaction rolled back")
	return nil
}

// Close rolls the transaction back unless it was committed or rolled back
// already. It is safe to call on every exit path.
func (g *Gateway) Close(ctx context.Context) error {
	if g.closed {
		return nil
	}
	err := g.Rollback(ctx)
	if errors.Is(err, runtime.ErrTransactionClosed) {
		return nil
	}
	return err
}

// tableOf returns the registered metadata of T.
func tableOf[T any](g *Gateway) (*schema.TableMetadata, error) {
	if g.closed {
		return nil, ErrClosed
	}
	table, err := g.registry.Get(reflect.TypeFor[T]())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", runtime.ErrInvalidModel, err)
	}
	return table, nil
}

// checkColumn rejects column names the table does not declare, so caller
// text never reaches SQL as an identifier.
func checkColumn(table *schema.TableMetadata, column string) error {
	if !table.HasColumn(column) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table.Name, column)
	}
	return nil
}

func primaryKey(table *schema.TableMetadata) (string, error) {
	pk, ok := table.PrimaryKeyColumn()
	if !ok {
		return "", fmt.Errorf("%w: %s", runtime.ErrNoPrimaryKey, table.Name)
	}
	return pk.Name, nil
}
