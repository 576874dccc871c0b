package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
)

func TestTxSelectQuery_ToSQL(t *testing.T) {
	tx := sqlTx(t, runtime.Postgres)

	tests := []struct {
		name       string
		query      *TxSelectQuery[Post]
		wantSQL    string
		wantArgLen int
	}{
		{
			name:    "simple select all",
			query:   TxSelect[Post](tx),
			wantSQL: "SELECT * FROM post",
		},
		{
			name:    "select specific columns",
			query:   TxSelect[Post](tx).Columns("id", "title"),
			wantSQL: "SELECT id, title FROM post",
		},
		{
			name:       "select with WHERE and ORDER BY",
			query:      TxSelect[Post](tx).Where(Eq("author_id", 3)).OrderByAsc("id"),
			wantSQL:    "SELECT * FROM post WHERE author_id = $1 ORDER BY id ASC",
			wantArgLen: 1,
		},
		{
			name:    "distinct with limit and offset",
			query:   TxSelect[Post](tx).Distinct().Columns("author_id").Limit(10).Offset(5),
			wantSQL: "SELECT DISTINCT author_id FROM post LIMIT 10 OFFSET 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.query.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArgLen)
		})
	}
}

func TestTxSelectQuery_UnregisteredModel(t *testing.T) {
	type Orphan struct {
		ID       int `po:"id,primaryKey,serial"`
		ParentID int `po:"parent_id,integer,fk(missing.id)"`
	}

	tx := sqlTx(t, runtime.SQLite)
	_, _, err := TxSelect[Orphan](tx).ToSQL()
	assert.True(t, errors.Is(err, runtime.ErrInvalidModel), "got %v", err)
}

func TestTxSelectQuery_SQLite(t *testing.T) {
	ctx := context.Background()
	tx := sqliteTx(t)

	authors, err := TxInsert[Author](tx).Values(Author{Name: "A1"}, Author{Name: "A2"}).ExecReturning(ctx)
	require.NoError(t, err)
	require.Len(t, authors, 2)

	_, err = TxInsert[Post](tx).Values(
		Post{AuthorID: authors[0].ID, Title: "first"},
		Post{AuthorID: authors[0].ID, Title: "second"},
	).Exec(ctx)
	require.NoError(t, err)

	t.Run("first match", func(t *testing.T) {
		post, err := TxSelect[Post](tx).Where(Eq("title", "second")).First(ctx)
		require.NoError(t, err)
		assert.Equal(t, authors[0].ID, post.AuthorID)
	})

	t.Run("first on no match", func(t *testing.T) {
		_, err := TxSelect[Post](tx).Where(Eq("title", "missing")).First(ctx)
		assert.ErrorIs(t, err, runtime.ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		n, err := TxSelect[Post](tx).Where(Eq("author_id", authors[0].ID)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		exists, err := TxSelect[Post](tx).Where(Eq("author_id", authors[1].ID)).Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("preload has many", func(t *testing.T) {
		got, err := TxSelect[Author](tx).OrderByAsc("id").Preload("Posts").All(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)

		require.Len(t, got[0].Posts, 2)
		assert.Equal(t, "first", got[0].Posts[0].Title)
		assert.Equal(t, "second", got[0].Posts[1].Title)

		// Authors without posts get an empty, non-nil list.
		assert.NotNil(t, got[1].Posts)
		assert.Empty(t, got[1].Posts)
	})

	t.Run("preload belongs to", func(t *testing.T) {
		got, err := TxSelect[Post](tx).Preload("Author").All(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, post := range got {
			require.NotNil(t, post.Author)
			assert.Equal(t, "A1", post.Author.Name)
		}
	})

	t.Run("unknown preload", func(t *testing.T) {
		_, err := TxSelect[Post](tx).Preload("Comments").All(ctx)
		assert.Error(t, err)
	})
}
