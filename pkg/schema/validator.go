package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidTable is returned when parsed metadata breaks a structural rule.
var ErrInvalidTable = errors.New("invalid table definition")

// Validate checks the rules every mapped table must follow: column names are
// unique, there is exactly one primary key column, and every foreign key
// column is a declared column of the table.
func Validate(table *TableMetadata) error {
	seen := make(map[string]string, len(table.Columns))
	for _, col := range table.Columns {
		if other, ok := seen[col.Name]; ok {
			return fmt.Errorf("%w: %s: column %q is mapped by both %s and %s",
				ErrInvalidTable, table.Name, col.Name, other, col.GoField)
		}
		seen[col.Name] = col.GoField
	}

	if table.PrimaryKey == nil || len(table.PrimaryKey.Columns) == 0 {
		return fmt.Errorf("%w: %s: no primary key defined", ErrInvalidTable, table.Name)
	}
	if len(table.PrimaryKey.Columns) > 1 {
		return fmt.Errorf("%w: %s: composite primary key %v, want a single column",
			ErrInvalidTable, table.Name, table.PrimaryKey.Columns)
	}

	for _, fk := range table.ForeignKeys {
		for _, col := range fk.Columns {
			if !table.HasColumn(col) {
				return fmt.Errorf("%w: %s: foreign key %s uses unknown column %q",
					ErrInvalidTable, table.Name, fk.Name, col)
			}
		}
		if len(fk.Columns) != len(fk.ReferencedColumns) {
			return fmt.Errorf("%w: %s: foreign key %s references %d columns with %d",
				ErrInvalidTable, table.Name, fk.Name, len(fk.ReferencedColumns), len(fk.Columns))
		}
	}

	for _, rel := range table.Relationships {
		// BelongsTo keeps its key on this table, so it can be checked here;
		// HasMany keys live on the target and are checked on load.
		if rel.Type == BelongsTo && !table.HasColumn(rel.ForeignKey) {
			return fmt.Errorf("%w: %s: relationship %s uses unknown column %q",
				ErrInvalidTable, table.Name, rel.SourceField, rel.ForeignKey)
		}
	}
	return nil
}
