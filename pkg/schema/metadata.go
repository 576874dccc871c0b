// Package schema turns `po` tagged Go structs into table metadata.
package schema

import "reflect"

// TableMetadata describes one relation mapped from a Go struct.
type TableMetadata struct {
	Name          string
	GoType        reflect.Type
	Columns       []ColumnMetadata
	PrimaryKey    *PrimaryKeyMetadata
	ForeignKeys   []ForeignKeyMetadata
	Relationships []RelationshipMetadata
}

// ColumnMetadata describes one scalar column.
type ColumnMetadata struct {
	Name          string
	GoField       string
	GoType        reflect.Type
	SQLType       string
	Nullable      bool
	Unique        bool
	AutoIncrement bool
	Default       *string
	Position      int
}

// PrimaryKeyMetadata describes the primary key of a table.
type PrimaryKeyMetadata struct {
	Name    string
	Columns []string
}

// ForeignKeyMetadata describes a database level foreign key constraint.
type ForeignKeyMetadata struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          ReferenceAction
	OnUpdate          ReferenceAction
}

// ReferenceAction is the referential action of a foreign key.
type ReferenceAction string

const (
	NoAction   ReferenceAction = "NO ACTION"
	Restrict   ReferenceAction = "RESTRICT"
	Cascade    ReferenceAction = "CASCADE"
	SetNull    ReferenceAction = "SET NULL"
	SetDefault ReferenceAction = "SET DEFAULT"
)

// Column returns the column with the given name.
func (t *TableMetadata) Column(name string) (*ColumnMetadata, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// HasColumn reports whether the table has a column with the given name.
func (t *TableMetadata) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// IsPrimaryKey reports whether the column is part of the primary key.
func (t *TableMetadata) IsPrimaryKey(name string) bool {
	if t.PrimaryKey == nil {
		return false
	}
	for _, col := range t.PrimaryKey.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// PrimaryKeyColumn returns the single primary key column.
func (t *TableMetadata) PrimaryKeyColumn() (*ColumnMetadata, bool) {
	if t.PrimaryKey == nil || len(t.PrimaryKey.Columns) != 1 {
		return nil, false
	}
	return t.Column(t.PrimaryKey.Columns[0])
}

// ColumnNames returns the column names in declaration order.
func (t *TableMetadata) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// References returns the names of the tables this table points at through
// foreign keys, in declaration order.
func (t *TableMetadata) References() []string {
	var refs []string
	for _, fk := range t.ForeignKeys {
		refs = append(refs, fk.ReferencedTable)
	}
	return refs
}
