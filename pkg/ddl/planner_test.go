package ddl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
	"github.com/LadyAlena/sql-homeworks-6/pkg/schema"
)

func bookTables() []*schema.TableMetadata {
	publisher := &schema.TableMetadata{
		Name: "publisher",
		Columns: []schema.ColumnMetadata{
			{Name: "id", SQLType: "integer", AutoIncrement: true},
			{Name: "name", SQLType: "text"},
		},
		PrimaryKey: &schema.PrimaryKeyMetadata{Name: "publisher_pkey", Columns: []string{"id"}},
	}
	book := &schema.TableMetadata{
		Name: "book",
		Columns: []schema.ColumnMetadata{
			{Name: "id", SQLType: "integer", AutoIncrement: true},
			{Name: "title", SQLType: "text"},
			{Name: "publisher_id", SQLType: "integer"},
		},
		PrimaryKey: &schema.PrimaryKeyMetadata{Name: "book_pkey", Columns: []string{"id"}},
		ForeignKeys: []schema.ForeignKeyMetadata{{
			Name:              "fk_book_publisher_id",
			Columns:           []string{"publisher_id"},
			ReferencedTable:   "publisher",
			ReferencedColumns: []string{"id"},
			OnDelete:          schema.NoAction,
		}},
	}
	return []*schema.TableMetadata{publisher, book}
}

func TestCreateTable(t *testing.T) {
	tables := bookTables()

	t.Run("postgres", func(t *testing.T) {
		sql := NewPlanner(runtime.Postgres).CreateTable(tables[1])

		assert.True(t, strings.HasPrefix(sql, `CREATE TABLE "book" (`), sql)
		assert.Contains(t, sql, "id serial PRIMARY KEY")
		assert.Contains(t, sql, "title text NOT NULL")
		assert.Contains(t, sql, "publisher_id integer NOT NULL")
		assert.Contains(t, sql, `CONSTRAINT fk_book_publisher_id FOREIGN KEY (publisher_id) REFERENCES "publisher" (id)`)
		assert.NotContains(t, sql, "ON DELETE")
	})

	t.Run("sqlite", func(t *testing.T) {
		sql := NewPlanner(runtime.SQLite).CreateTable(tables[0])

		assert.Contains(t, sql, "id integer PRIMARY KEY AUTOINCREMENT")
		assert.Contains(t, sql, "name text NOT NULL")
	})

	t.Run("if not exists", func(t *testing.T) {
		p := NewPlannerWithOptions(runtime.Postgres, PlannerOptions{IfNotExists: true})
		assert.Contains(t, p.CreateTable(tables[0]), `CREATE TABLE IF NOT EXISTS "publisher"`)
	})
}

func TestColumnDefinition(t *testing.T) {
	p := NewPlanner(runtime.Postgres)
	def := "0"

	tests := []struct {
		name     string
		col      schema.ColumnMetadata
		inlinePK bool
		want     string
	}{
		{"nullable", schema.ColumnMetadata{Name: "note", SQLType: "text", Nullable: true}, false, "note text"},
		{"not null default", schema.ColumnMetadata{Name: "count", SQLType: "integer", Default: &def}, false, "count integer NOT NULL DEFAULT 0"},
		{"unique", schema.ColumnMetadata{Name: "code", SQLType: "varchar(8)", Unique: true}, false, "code varchar(8) NOT NULL UNIQUE"},
		{"natural key", schema.ColumnMetadata{Name: "code", SQLType: "text"}, true, "code text NOT NULL PRIMARY KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.columnDefinition(tt.col, tt.inlinePK))
		})
	}
}

func TestForeignKeyActions(t *testing.T) {
	fk := schema.ForeignKeyMetadata{
		Name:              "fk_sale_stock_id",
		Columns:           []string{"stock_id"},
		ReferencedTable:   "stock",
		ReferencedColumns: []string{"id"},
		OnDelete:          schema.Cascade,
		OnUpdate:          schema.Restrict,
	}
	sql := foreignKeyDefinition(fk)
	assert.Contains(t, sql, "ON DELETE CASCADE")
	assert.Contains(t, sql, "ON UPDATE RESTRICT")
}

func TestDropStatements(t *testing.T) {
	tables := bookTables()

	stmts := NewPlanner(runtime.Postgres).DropStatements(tables)
	require.Len(t, stmts, 2)
	assert.Equal(t, `DROP TABLE "book";`, stmts[0])
	assert.Equal(t, `DROP TABLE "publisher";`, stmts[1])

	p := NewPlannerWithOptions(runtime.SQLite, PlannerOptions{IfExists: true})
	assert.Equal(t, `DROP TABLE IF EXISTS "book";`, p.DropTable("book"))
}

func TestScript(t *testing.T) {
	script := NewPlanner(nil).Script(bookTables())

	dropBook := strings.Index(script, `DROP TABLE "book"`)
	dropPublisher := strings.Index(script, `DROP TABLE "publisher"`)
	createPublisher := strings.Index(script, `CREATE TABLE "publisher"`)
	createBook := strings.Index(script, `CREATE TABLE "book"`)

	require.True(t, dropBook >= 0 && dropPublisher >= 0 && createPublisher >= 0 && createBook >= 0, script)
	assert.Less(t, dropBook, dropPublisher)
	assert.Less(t, dropPublisher, createPublisher)
	assert.Less(t, createPublisher, createBook)
}
