package builder

import (
	"fmt"
	"reflect"

	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
	"github.com/LadyAlena/sql-homeworks-6/pkg/schema"
)

// scanAll drains rows into a slice of T and closes them.
func scanAll[T any](rows runtime.Rows, table *schema.TableMetadata) ([]T, error) {
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		var item T
		if err := scanIntoStruct(rows, &item, table); err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// scanIntoStruct scans a database row into a struct.
func scanIntoStruct(rows runtime.Rows, dest any, table *schema.TableMetadata) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Pointer {
		return fmt.Errorf("dest must be a pointer to struct")
	}

	destValue = destValue.Elem()
	if destValue.Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct")
	}

	columns := rows.Columns()
	scanTargets := make([]any, len(columns))
	columnMap := make(map[string]int, len(columns))
	for i, name := range columns {
		columnMap[name] = i
	}

	// Map struct fields to scan targets
	for _, col := range table.Columns {
		idx, ok := columnMap[col.Name]
		if !ok {
			continue
		}

		field := destValue.FieldByName(col.GoField)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		scanTargets[idx] = field.Addr().Interface()
	}

	// Fill any nil scan targets with dummy variables
	for i := range scanTargets {
		if scanTargets[i] == nil {
			var dummy any
			scanTargets[i] = &dummy
		}
	}

	if err := rows.Scan(scanTargets...); err != nil {
		return fmt.Errorf("failed to scan row: %w", err)
	}
	return nil
}

// structToValues converts a struct to column names and values.
// Auto-increment primary keys are omitted when skipPrimaryKey is set, and
// zero-valued fields with a database default are left to the database.
func structToValues(model any, table *schema.TableMetadata, skipPrimaryKey bool) ([]string, []any, error) {
	modelValue := reflect.ValueOf(model)
	if modelValue.Kind() == reflect.Pointer {
		if modelValue.IsNil() {
			return nil, nil, fmt.Errorf("model must not be nil")
		}
		modelValue = modelValue.Elem()
	}

	if modelValue.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct")
	}

	var columns []string
	var values []any

	for _, col := range table.Columns {
		if skipPrimaryKey && table.IsPrimaryKey(col.Name) && col.AutoIncrement {
			continue
		}

		field := modelValue.FieldByName(col.GoField)
		if !field.IsValid() {
			continue
		}

		if col.Default != nil && field.IsZero() {
			continue
		}

		columns = append(columns, col.Name)
		values = append(values, field.Interface())
	}

	return columns, values, nil
}
