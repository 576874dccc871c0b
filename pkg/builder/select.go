package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
	"github.com/LadyAlena/sql-homeworks-6/pkg/schema"
)

// TxSelectQuery represents a SELECT query within a transaction.
type TxSelectQuery[T any] struct {
	tx       *Tx
	table    *schema.TableMetadata
	err      error
	columns  []string
	where    []Condition
	orderBy  []OrderBy
	limit    *int
	offset   *int
	distinct bool
	preloads []string // Relationship fields to eagerly load
}

// Columns specifies which columns to select.
func (q *TxSelectQuery[T]) Columns(cols ...string) *TxSelectQuery[T] {
	q.columns = cols
	return q
}

// Where adds a WHERE condition.
func (q *TxSelectQuery[T]) Where(condition Condition) *TxSelectQuery[T] {
	q.where = append(q.where, condition)
	return q
}

// And adds an AND condition.
func (q *TxSelectQuery[T]) And(condition Condition) *TxSelectQuery[T] {
	condition.Logic = LogicAnd
	return q.Where(condition)
}

// Or adds an OR condition.
func (q *TxSelectQuery[T]) Or(condition Condition) *TxSelectQuery[T] {
	condition.Logic = LogicOr
	return q.Where(condition)
}

// OrderBy adds an ORDER BY clause.
func (q *TxSelectQuery[T]) OrderBy(column string, direction OrderDirection) *TxSelectQuery[T] {
	q.orderBy = append(q.orderBy, OrderBy{Column: column, Direction: direction})
	return q
}

// OrderByAsc adds an ascending ORDER BY clause.
func (q *TxSelectQuery[T]) OrderByAsc(column string) *TxSelectQuery[T] {
	return q.OrderBy(column, Asc)
}

// Limit sets the LIMIT clause.
func (q *TxSelectQuery[T]) Limit(limit int) *TxSelectQuery[T] {
	q.limit = &limit
	return q
}

// Offset sets the OFFSET clause.
func (q *TxSelectQuery[T]) Offset(offset int) *TxSelectQuery[T] {
	q.offset = &offset
	return q
}

// Distinct adds DISTINCT to the query.
func (q *TxSelectQuery[T]) Distinct() *TxSelectQuery[T] {
	q.distinct = true
	return q
}

// Preload specifies relationships to eagerly load.
// Pass the name of the Go struct field that contains the relationship.
// Example: query.Preload("Stocks").Preload("Publisher")
func (q *TxSelectQuery[T]) Preload(relationships ...string) *TxSelectQuery[T] {
	q.preloads = append(q.preloads, relationships...)
	return q
}

// ToSQL generates the SQL query and arguments.
func (q *TxSelectQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if q.table == nil {
		return "", nil, fmt.Errorf("table metadata not available")
	}

	var sql strings.Builder
	var args []any

	sql.WriteString("SELECT ")
	if q.distinct {
		sql.WriteString("DISTINCT ")
	}
	if len(q.columns) == 0 || (len(q.columns) == 1 && q.columns[0] == "*") {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(q.columns, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(q.table.Name)

	whereSQL, whereArgs, err := q.buildWhere()
	if err != nil {
		return "", nil, err
	}
	if whereSQL != "" {
		sql.WriteString(" ")
		sql.WriteString(whereSQL)
		args = append(args, whereArgs...)
	}

	if len(q.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		orderParts := make([]string, len(q.orderBy))
		for i, order := range q.orderBy {
			orderParts[i] = order.Column + " " + string(order.Direction)
		}
		sql.WriteString(strings.Join(orderParts, ", "))
	}

	if q.limit != nil {
		sql.WriteString(fmt.Sprintf(" LIMIT %d", *q.limit))
	}
	if q.offset != nil {
		sql.WriteString(fmt.Sprintf(" OFFSET %d", *q.offset))
	}

	return sql.String(), args, nil
}

func (q *TxSelectQuery[T]) buildWhere() (string, []any, error) {
	if len(q.where) == 0 {
		return "", nil, nil
	}
	whereBuilder := NewWhereBuilder(q.tx.dialect)
	whereBuilder.Add(q.where...)
	whereSQL, whereArgs, err := whereBuilder.Build()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build WHERE clause: %w", err)
	}
	return whereSQL, whereArgs, nil
}

// All executes the query and returns all results.
func (q *TxSelectQuery[T]) All(ctx context.Context) ([]T, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := q.tx.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	results, err := scanAll[T](rows, q.table)
	if err != nil {
		return nil, err
	}

	if err := q.tx.loadRelationships(ctx, q.table, q.preloads, results); err != nil {
		return nil, err
	}
	return results, nil
}

// First executes the query and returns the first result, or
// runtime.ErrNotFound when nothing matches.
func (q *TxSelectQuery[T]) First(ctx context.Context) (T, error) {
	var zero T

	results, err := q.Limit(1).All(ctx)
	if err != nil {
		return zero, err
	}
	if len(results) == 0 {
		return zero, runtime.ErrNotFound
	}
	return results[0], nil
}

// Count executes a COUNT query.
func (q *TxSelectQuery[T]) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if q.table == nil {
		return 0, fmt.Errorf("table metadata not available")
	}

	var sql strings.Builder
	sql.WriteString("SELECT COUNT(*) FROM ")
	sql.WriteString(q.table.Name)

	whereSQL, args, err := q.buildWhere()
	if err != nil {
		return 0, err
	}
	if whereSQL != "" {
		sql.WriteString(" ")
		sql.WriteString(whereSQL)
	}

	rows, err := q.tx.tx.Query(ctx, sql.String(), args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to scan count: %w", err)
		}
	}
	return count, rows.Err()
}

// Exists checks if any rows match the query.
func (q *TxSelectQuery[T]) Exists(ctx context.Context) (bool, error) {
	count, err := q.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
