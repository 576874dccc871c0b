package builder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LadyAlena/sql-homeworks-6/pkg/ddl"
	"github.com/LadyAlena/sql-homeworks-6/pkg/registry"
	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
)

type Author struct {
	ID    int    `po:"id,primaryKey,serial"`
	Name  string `po:"name,text,notNull"`
	Posts []Post `po:"-,hasMany,foreignKey(author_id),references(id)"`
}

type Post struct {
	ID       int     `po:"id,primaryKey,serial"`
	AuthorID int     `po:"author_id,integer,notNull,fk(author.id)"`
	Title    string  `po:"title,text,notNull"`
	Author   *Author `po:"-,belongsTo,foreignKey(author_id),references(id)"`
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(Author{}))
	require.NoError(t, reg.Register(Post{}))
	return reg
}

// sqlTx returns a transaction with no connection, for SQL generation tests.
func sqlTx(t *testing.T, dialect runtime.Dialect) *Tx {
	t.Helper()
	return &Tx{tx: nil, dialect: dialect, registry: testRegistry(t)}
}

// sqliteTx opens a fresh SQLite database with the test tables created and
// returns an open transaction on it.
func sqliteTx(t *testing.T) *Tx {
	t.Helper()
	ctx := context.Background()

	rdb, err := runtime.OpenSQLite(ctx, filepath.Join(t.TempDir(), "builder.db"))
	require.NoError(t, err)
	t.Cleanup(rdb.Close)

	db := New(rdb, testRegistry(t))
	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })

	planner := ddl.NewPlanner(rdb.Dialect())
	for _, stmt := range planner.CreateStatements(db.Registry().Tables()) {
		_, err := tx.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return tx
}
