package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/LadyAlena/sql-homeworks-6/pkg/schema"
)

// TxInsertQuery represents an INSERT query within a transaction.
type TxInsertQuery[T any] struct {
	tx        *Tx
	table     *schema.TableMetadata
	err       error
	values    []T
	returning []string
}

// Values adds rows to insert.
func (q *TxInsertQuery[T]) Values(values ...T) *TxInsertQuery[T] {
	q.values = append(q.values, values...)
	return q
}

// Returning specifies columns to return.
func (q *TxInsertQuery[T]) Returning(columns ...string) *TxInsertQuery[T] {
	q.returning = append(q.returning, columns...)
	return q
}

// ToSQL generates the INSERT SQL and arguments.
func (q *TxInsertQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if q.table == nil {
		return "", nil, fmt.Errorf("table metadata not available")
	}
	if len(q.values) == 0 {
		return "", nil, fmt.Errorf("no values to insert")
	}

	var sql strings.Builder
	var args []any
	paramNum := 1

	sql.WriteString("INSERT INTO ")
	sql.WriteString(q.table.Name)

	// Get columns from the first row
	columns, _, err := structToValues(q.values[0], q.table, true)
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract values: %w", err)
	}
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("no insertable columns on %s", q.table.Name)
	}

	sql.WriteString(" (")
	sql.WriteString(strings.Join(columns, ", "))
	sql.WriteString(") VALUES ")

	valueClauses := make([]string, len(q.values))
	for i, val := range q.values {
		rowColumns, rowValues, err := structToValues(val, q.table, true)
		if err != nil {
			return "", nil, fmt.Errorf("failed to extract values from row %d: %w", i, err)
		}
		if len(rowColumns) != len(columns) {
			return "", nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(rowColumns), len(columns))
		}

		placeholders := make([]string, len(rowValues))
		for j := range rowValues {
			placeholders[j] = q.tx.dialect.Placeholder(paramNum)
			paramNum++
			args = append(args, rowValues[j])
		}
		valueClauses[i] = "(" + strings.Join(placeholders, ", ") + ")"
	}
	sql.WriteString(strings.Join(valueClauses, ", "))

	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(q.returning, ", "))
	}

	return sql.String(), args, nil
}

// Exec executes the INSERT query and returns the number of inserted rows.
func (q *TxInsertQuery[T]) Exec(ctx context.Context) (int64, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return 0, err
	}

	// If no RETURNING clause, use simple Exec
	if len(q.returning) == 0 {
		n, err := q.tx.tx.Exec(ctx, sql, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to execute insert: %w", err)
		}
		return n, nil
	}

	rows, err := q.tx.tx.Query(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute insert: %w", err)
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to execute insert: %w", err)
	}
	return count, nil
}

// ExecReturning executes the INSERT and scans the RETURNING values. Rows come
// back with their generated keys filled in.
func (q *TxInsertQuery[T]) ExecReturning(ctx context.Context) ([]T, error) {
	// Ensure we have RETURNING clause
	if len(q.returning) == 0 {
		q.Returning("*")
	}

	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := q.tx.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute insert: %w", err)
	}

	results, err := scanAll[T](rows, q.table)
	if err != nil {
		return nil, fmt.Errorf("failed to execute insert: %w", err)
	}
	return results, nil
}
