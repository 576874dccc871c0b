package builder

import (
	"context"
	"fmt"
	"reflect"

	"github.com/LadyAlena/sql-homeworks-6/pkg/schema"
)

// loadRelationships loads all preloaded relationships for a set of results.
// results must be a slice of structs of the given table.
func (t *Tx) loadRelationships(ctx context.Context, table *schema.TableMetadata, preloads []string, results any) error {
	if len(preloads) == 0 {
		return nil
	}

	resultsVal := reflect.ValueOf(results)
	if resultsVal.Kind() != reflect.Slice {
		return fmt.Errorf("results must be a slice")
	}
	if resultsVal.Len() == 0 {
		return nil // No results to load relationships for
	}

	for _, fieldName := range preloads {
		rel := table.GetRelationship(fieldName)
		if rel == nil {
			return fmt.Errorf("relationship %s not found on %s", fieldName, table.Name)
		}

		if err := t.loadRelationship(ctx, table, resultsVal, rel); err != nil {
			return fmt.Errorf("failed to load relationship %s: %w", fieldName, err)
		}
	}
	return nil
}

// loadRelationship loads a specific relationship for all results.
func (t *Tx) loadRelationship(ctx context.Context, table *schema.TableMetadata, results reflect.Value, rel *schema.RelationshipMetadata) error {
	targetTable, err := t.registry.Get(rel.TargetType)
	if err != nil {
		return fmt.Errorf("target table %s not registered: %w", rel.TargetTable, err)
	}

	switch rel.Type {
	case schema.BelongsTo:
		return t.loadBelongsTo(ctx, table, targetTable, results, rel)
	case schema.HasMany:
		return t.loadHasMany(ctx, table, targetTable, results, rel)
	default:
		return fmt.Errorf("unsupported relationship type: %s", rel.Type)
	}
}

// loadBelongsTo loads belongsTo relationships.
// Example: Book belongsTo Publisher (book.publisher_id -> publisher.id)
func (t *Tx) loadBelongsTo(ctx context.Context, table, targetTable *schema.TableMetadata, results reflect.Value, rel *schema.RelationshipMetadata) error {
	fkField, err := goField(table, rel.ForeignKey)
	if err != nil {
		return err
	}
	refField, err := goField(targetTable, rel.References)
	if err != nil {
		return err
	}

	// Collect foreign key values from all results
	foreignKeys := make([]any, 0, results.Len())
	foreignKeyMap := make(map[any][]int) // Map FK value to result indices

	for i := 0; i < results.Len(); i++ {
		item := reflect.Indirect(results.Index(i))
		fkValue := item.FieldByName(fkField)
		if !fkValue.IsValid() || fkValue.IsZero() {
			continue
		}

		key := reflect.Indirect(fkValue).Interface()
		if _, exists := foreignKeyMap[key]; !exists {
			foreignKeys = append(foreignKeys, key)
		}
		foreignKeyMap[key] = append(foreignKeyMap[key], i)
	}

	if len(foreignKeys) == 0 {
		return nil
	}

	return t.queryRelated(ctx, targetTable, rel.References, foreignKeys, func(related reflect.Value) {
		key := related.Elem().FieldByName(refField).Interface()

		// Assign to all results that reference this related record
		for _, idx := range foreignKeyMap[key] {
			relationField := reflect.Indirect(results.Index(idx)).FieldByName(rel.SourceField)
			if !relationField.IsValid() || !relationField.CanSet() {
				continue
			}
			if relationField.Kind() == reflect.Pointer {
				// Each parent gets its own copy so callers can mutate freely.
				copied := reflect.New(targetTable.GoType)
				copied.Elem().Set(related.Elem())
				relationField.Set(copied)
			} else {
				relationField.Set(related.Elem())
			}
		}
	})
}

// loadHasMany loads hasMany relationships.
// Example: Publisher hasMany Books (book.publisher_id -> publisher.id)
func (t *Tx) loadHasMany(ctx context.Context, table, targetTable *schema.TableMetadata, results reflect.Value, rel *schema.RelationshipMetadata) error {
	refField, err := goField(table, rel.References)
	if err != nil {
		return err
	}
	fkField, err := goField(targetTable, rel.ForeignKey)
	if err != nil {
		return err
	}

	// Collect primary key values from all results
	primaryKeys := make([]any, 0, results.Len())
	pkMap := make(map[any][]int)

	for i := 0; i < results.Len(); i++ {
		item := reflect.Indirect(results.Index(i))
		pkValue := item.FieldByName(refField)
		if !pkValue.IsValid() {
			continue
		}

		key := reflect.Indirect(pkValue).Interface()
		if _, exists := pkMap[key]; !exists {
			primaryKeys = append(primaryKeys, key)
		}
		pkMap[key] = append(pkMap[key], i)

		// Zero books is an empty list, not a nil one.
		relationField := item.FieldByName(rel.SourceField)
		if relationField.IsValid() && relationField.CanSet() && relationField.IsNil() {
			relationField.Set(reflect.MakeSlice(relationField.Type(), 0, 0))
		}
	}

	if len(primaryKeys) == 0 {
		return nil
	}

	return t.queryRelated(ctx, targetTable, rel.ForeignKey, primaryKeys, func(related reflect.Value) {
		key := related.Elem().FieldByName(fkField).Interface()

		for _, idx := range pkMap[key] {
			relationField := reflect.Indirect(results.Index(idx)).FieldByName(rel.SourceField)
			if !relationField.IsValid() || !relationField.CanSet() || relationField.Kind() != reflect.Slice {
				continue
			}

			elemToAppend := related.Elem()
			if relationField.Type().Elem().Kind() == reflect.Pointer {
				elemToAppend = reflect.New(targetTable.GoType)
				elemToAppend.Elem().Set(related.Elem())
			}
			relationField.Set(reflect.Append(relationField, elemToAppend))
		}
	})
}

// queryRelated selects the rows of targetTable whose column is one of keys,
// ordered by primary key, and hands each scanned row to assign.
func (t *Tx) queryRelated(ctx context.Context, targetTable *schema.TableMetadata, column string, keys []any, assign func(reflect.Value)) error {
	where := NewWhereBuilder(t.dialect)
	where.Add(In(column, keys...))
	whereSQL, args, err := where.Build()
	if err != nil {
		return err
	}

	sql := fmt.Sprintf("SELECT * FROM %s %s", targetTable.Name, whereSQL)
	if pk, ok := targetTable.PrimaryKeyColumn(); ok {
		sql += " ORDER BY " + pk.Name + " ASC"
	}

	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to query related records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		related := reflect.New(targetTable.GoType)
		if err := scanIntoStruct(rows, related.Interface(), targetTable); err != nil {
			return fmt.Errorf("failed to scan related record: %w", err)
		}
		assign(related)
	}
	return rows.Err()
}

// goField returns the Go field name backing a column.
func goField(table *schema.TableMetadata, column string) (string, error) {
	col, ok := table.Column(column)
	if !ok {
		return "", fmt.Errorf("column %s not found on %s", column, table.Name)
	}
	return col.GoField, nil
}
