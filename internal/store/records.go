package store

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/LadyAlena/sql-homeworks-6/internal/telemetry"
	"github.com/LadyAlena/sql-homeworks-6/pkg/builder"
)

// Insert persists row and returns it as stored, with its generated id. The
// row is visible to every later lookup on the gateway.
func Insert[T any](ctx context.Context, g *Gateway, row T) (_ T, err error) {
	var zero T

	table, err := tableOf[T](g)
	if err != nil {
		return zero, err
	}

	ctx, span := g.tracer.Start(ctx, "store.Insert")
	span.SetAttributes(attribute.String("db.table", table.Name))
	defer func() { telemetry.End(span, err) }()

	rows, err := builder.TxInsert[T](g.tx).Values(row).ExecReturning(ctx)
	if err != nil {
		return zero, fmt.Errorf("insert %s: %w", table.Name, err)
	}
	if len(rows) != 1 {
		return zero, fmt.Errorf("insert %s: expected 1 returned row, got %d", table.Name, len(rows))
	}

	g.metrics.RowInserted(table.Name)
	return rows[0], nil
}

// FindByField returns the first row, by id, whose column equals value.
// ErrNotFound is returned when nothing matches.
func FindByField[T any](ctx context.Context, g *Gateway, column string, value any) (_ T, err error) {
	var zero T

	table, err := tableOf[T](g)
	if err != nil {
		return zero, err
	}
	if err := checkColumn(table, column); err != nil {
		return zero, err
	}
	pk, err := primaryKey(table)
	if err != nil {
		return zero, err
	}

	ctx, span := g.tracer.Start(ctx, "store.FindByField")
	span.SetAttributes(attribute.String("db.table", table.Name), attribute.String("db.column", column))
	defer func() {
		if errors.Is(err, ErrNotFound) {
			// A miss is an answer, not a failure of the lookup itself.
			telemetry.End(span, nil)
			return
		}
		telemetry.End(span, err)
	}()

	row, err := builder.TxSelect[T](g.tx).
		Where(builder.Eq(column, value)).
		OrderByAsc(pk).
		First(ctx)
	if errors.Is(err, ErrNotFound) {
		g.metrics.Lookup(table.Name, false)
		return zero, fmt.Errorf("%w: %s with %s = %v", ErrNotFound, table.Name, column, value)
	}
	if err != nil {
		return zero, fmt.Errorf("find %s by %s: %w", table.Name, column, err)
	}

	g.metrics.Lookup(table.Name, true)
	return row, nil
}

// FindAllByField returns every row whose column equals value, ordered by id.
func FindAllByField[T any](ctx context.Context, g *Gateway, column string, value any) ([]T, error) {
	table, err := tableOf[T](g)
	if err != nil {
		return nil, err
	}
	if err := checkColumn(table, column); err != nil {
		return nil, err
	}
	pk, err := primaryKey(table)
	if err != nil {
		return nil, err
	}

	rows, err := builder.TxSelect[T](g.tx).
		Where(builder.Eq(column, value)).
		OrderByAsc(pk).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("find %s by %s: %w", table.Name, column, err)
	}

	g.metrics.Lookup(table.Name, len(rows) > 0)
	return rows, nil
}

// FindByID returns the row with the given id, or nil when there is none.
// A missing id is not an error.
func FindByID[T any](ctx context.Context, g *Gateway, id int) (*T, error) {
	table, err := tableOf[T](g)
	if err != nil {
		return nil, err
	}
	pk, err := primaryKey(table)
	if err != nil {
		return nil, err
	}

	row, err := builder.TxSelect[T](g.tx).Where(builder.Eq(pk, id)).First(ctx)
	if errors.Is(err, ErrNotFound) {
		g.metrics.Lookup(table.Name, false)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s by id: %w", table.Name, err)
	}

	g.metrics.Lookup(table.Name, true)
	return &row, nil
}

// FindAll returns every row of the table ordered by id.
func FindAll[T any](ctx context.Context, g *Gateway) ([]T, error) {
	table, err := tableOf[T](g)
	if err != nil {
		return nil, err
	}
	pk, err := primaryKey(table)
	if err != nil {
		return nil, err
	}

	rows, err := builder.TxSelect[T](g.tx).OrderByAsc(pk).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table.Name, err)
	}
	return rows, nil
}

// Count returns the number of rows in the table.
func Count[T any](ctx context.Context, g *Gateway) (int64, error) {
	table, err := tableOf[T](g)
	if err != nil {
		return 0, err
	}

	n, err := builder.TxSelect[T](g.tx).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table.Name, err)
	}
	return n, nil
}

// Select starts a query on the gateway transaction for callers that need
// more than the helpers above, e.g. relationship preloading.
func Select[T any](g *Gateway) (*builder.TxSelectQuery[T], error) {
	if _, err := tableOf[T](g); err != nil {
		return nil, err
	}
	return builder.TxSelect[T](g.tx), nil
}
