// Package ddl generates CREATE TABLE and DROP TABLE statements from table
// metadata for the supported SQL dialects.
package ddl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
	"github.com/LadyAlena/sql-homeworks-6/pkg/schema"
)

// quoteIdent quotes an identifier (table name, column name, etc.)
// to handle reserved keywords and special characters.
func quoteIdent(name string) string {
	return fmt.Sprintf(`"%s"`, name)
}

// PlannerOptions configures statement generation behavior.
type PlannerOptions struct {
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE statements.
	IfNotExists bool
	// IfExists adds IF EXISTS to DROP TABLE statements. Schema reset leaves it
	// off so that a missing table is reported by the database.
	IfExists bool
}

// Planner generates DDL statements for one dialect.
type Planner struct {
	dialect runtime.Dialect
	options PlannerOptions
}

// NewPlanner creates a planner that emits plain CREATE TABLE / DROP TABLE.
func NewPlanner(dialect runtime.Dialect) *Planner {
	return NewPlannerWithOptions(dialect, PlannerOptions{})
}

// NewPlannerWithOptions creates a planner with custom options.
func NewPlannerWithOptions(dialect runtime.Dialect, opts PlannerOptions) *Planner {
	if dialect == nil {
		dialect = runtime.Postgres
	}
	return &Planner{dialect: dialect, options: opts}
}

// Dialect returns the dialect statements are generated for.
func (p *Planner) Dialect() runtime.Dialect {
	return p.dialect
}

// CreateStatements returns one CREATE TABLE per table, in the given order.
// The order must place referenced tables first.
func (p *Planner) CreateStatements(tables []*schema.TableMetadata) []string {
	stmts := make([]string, 0, len(tables))
	for _, table := range tables {
		stmts = append(stmts, p.CreateTable(table))
	}
	return stmts
}

// DropStatements returns one DROP TABLE per table, in reverse of the given
// creation order.
func (p *Planner) DropStatements(tables []*schema.TableMetadata) []string {
	stmts := make([]string, 0, len(tables))
	for _, table := range slices.Backward(tables) {
		stmts = append(stmts, p.DropTable(table.Name))
	}
	return stmts
}

// Script renders a full reset script: drops followed by creates.
func (p *Planner) Script(tables []*schema.TableMetadata) string {
	stmts := append(p.DropStatements(tables), p.CreateStatements(tables)...)
	return strings.Join(stmts, "\n\n") + "\n"
}

// CreateTable generates a CREATE TABLE statement.
func (p *Planner) CreateTable(table *schema.TableMetadata) string {
	var parts []string

	// Determine if we have a single-column primary key for inline declaration
	var singlePKColumn string
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) == 1 {
		singlePKColumn = table.PrimaryKey.Columns[0]
	}

	for _, col := range table.Columns {
		inlinePK := singlePKColumn != "" && col.Name == singlePKColumn
		parts = append(parts, "    "+p.columnDefinition(col, inlinePK))
	}

	// Primary key (composite only - single column handled inline)
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) > 1 {
		pkCols := strings.Join(table.PrimaryKey.Columns, ", ")
		parts = append(parts, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)", table.PrimaryKey.Name, pkCols))
	}

	for _, fk := range table.ForeignKeys {
		parts = append(parts, "    "+foreignKeyDefinition(fk))
	}

	createClause := "CREATE TABLE"
	if p.options.IfNotExists {
		createClause = "CREATE TABLE IF NOT EXISTS"
	}
	return fmt.Sprintf("%s %s (\n%s\n);", createClause, quoteIdent(table.Name), strings.Join(parts, ",\n"))
}

// DropTable generates a DROP TABLE statement.
func (p *Planner) DropTable(tableName string) string {
	if p.options.IfExists {
		return fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdent(tableName))
	}
	return fmt.Sprintf("DROP TABLE %s;", quoteIdent(tableName))
}

// columnDefinition generates a column definition.
func (p *Planner) columnDefinition(col schema.ColumnMetadata, inlinePK bool) string {
	if inlinePK && col.AutoIncrement {
		return p.dialect.SerialPrimaryKey(col.Name)
	}

	parts := []string{col.Name, col.SQLType}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		parts = append(parts, "DEFAULT", *col.Default)
	}
	if col.Unique && !inlinePK {
		parts = append(parts, "UNIQUE")
	}
	if inlinePK {
		parts = append(parts, "PRIMARY KEY")
	}
	return strings.Join(parts, " ")
}

// foreignKeyDefinition generates a foreign key constraint.
func foreignKeyDefinition(fk schema.ForeignKeyMetadata) string {
	localCols := strings.Join(fk.Columns, ", ")
	refCols := strings.Join(fk.ReferencedColumns, ", ")

	parts := []string{
		fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s)", fk.Name, localCols),
		fmt.Sprintf("REFERENCES %s (%s)", quoteIdent(fk.ReferencedTable), refCols),
	}

	if fk.OnDelete != schema.NoAction && fk.OnDelete != "" {
		parts = append(parts, "ON DELETE "+string(fk.OnDelete))
	}
	if fk.OnUpdate != schema.NoAction && fk.OnUpdate != "" {
		parts = append(parts, "ON UPDATE "+string(fk.OnUpdate))
	}

	return strings.Join(parts, " ")
}
