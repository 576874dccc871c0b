package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Author struct {
	ID       int       `po:"id,primaryKey,serial"`
	Name     string    `po:"name,varchar(100),notNull"`
	Nickname *string   `po:"nickname"`
	Articles []Article `po:"-,hasMany,foreignKey(author_id),references(id)"`
}

type Article struct {
	ID       int     `po:"id,primaryKey,serial"`
	Title    string  `po:"title,text,notNull,unique"`
	AuthorID int     `po:"author_id,integer,notNull,fk(author.id),onDelete(cascade)"`
	Rating   float64 `po:"rating,default(0)"`
	Author   *Author `po:"-,belongsTo,foreignKey(author_id),references(id)"`
	internal string
	Ignored  string
}

type LineItem struct {
	ID int `po:"id,primaryKey"`
}

type Receipt struct {
	ID int `po:"id,primaryKey"`
}

func (*Receipt) TableName() string { return "receipts" }

func parse(t *testing.T, model any) *TableMetadata {
	t.Helper()
	table, err := NewParser().Parse(reflect.TypeOf(model))
	require.NoError(t, err)
	return table
}

func TestParse_Columns(t *testing.T) {
	table := parse(t, Article{})

	assert.Equal(t, "article", table.Name)
	assert.Equal(t, []string{"id", "title", "author_id", "rating"}, table.ColumnNames())

	id, ok := table.Column("id")
	require.True(t, ok)
	assert.True(t, id.AutoIncrement)
	assert.False(t, id.Nullable)
	assert.True(t, table.IsPrimaryKey("id"))

	title, _ := table.Column("title")
	assert.Equal(t, "text", title.SQLType)
	assert.False(t, title.Nullable)
	assert.True(t, title.Unique)
	assert.Equal(t, "Title", title.GoField)

	rating, _ := table.Column("rating")
	assert.Equal(t, "double precision", rating.SQLType)
	assert.True(t, rating.Nullable)
	require.NotNil(t, rating.Default)
	assert.Equal(t, "0", *rating.Default)

	assert.False(t, table.HasColumn("internal"))
	assert.False(t, table.HasColumn("ignored"))
}

func TestParse_ForeignKeys(t *testing.T) {
	table := parse(t, Article{})

	require.Len(t, table.ForeignKeys, 1)
	fk := table.ForeignKeys[0]
	assert.Equal(t, "fk_article_author_id", fk.Name)
	assert.Equal(t, []string{"author_id"}, fk.Columns)
	assert.Equal(t, "author", fk.ReferencedTable)
	assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
	assert.Equal(t, Cascade, fk.OnDelete)
	assert.Equal(t, NoAction, fk.OnUpdate)
	assert.Equal(t, []string{"author"}, table.References())
}

func TestParse_Relationships(t *testing.T) {
	author := parse(t, Author{})
	article := parse(t, Article{})

	articles := author.GetRelationship("Articles")
	require.NotNil(t, articles)
	assert.Equal(t, HasMany, articles.Type)
	assert.Equal(t, "article", articles.TargetTable)
	assert.Equal(t, "author_id", articles.ForeignKey)
	assert.Equal(t, "id", articles.References)

	owner := article.GetRelationship("Author")
	require.NotNil(t, owner)
	assert.Equal(t, BelongsTo, owner.Type)
	assert.Equal(t, reflect.TypeOf(Author{}), owner.TargetType)

	assert.Len(t, article.GetRelationshipsByType(BelongsTo), 1)
	assert.Empty(t, article.GetRelationshipsByType(HasMany))
	assert.Nil(t, article.GetRelationship("Missing"))
	assert.False(t, author.HasColumn("-"), "relationship fields are not columns")
}

func TestParse_NullablePointer(t *testing.T) {
	nick, ok := parse(t, Author{}).Column("nickname")
	require.True(t, ok)
	assert.True(t, nick.Nullable)
	assert.Equal(t, "text", nick.SQLType)
}

func TestParse_TableNames(t *testing.T) {
	assert.Equal(t, "line_item", parse(t, LineItem{}).Name)
	assert.Equal(t, "line_item", parse(t, &LineItem{}).Name, "pointers are dereferenced")
	assert.Equal(t, "receipts", parse(t, Receipt{}).Name, "TableName overrides the type name")
}

func TestParse_Cache(t *testing.T) {
	p := NewParser()
	a, err := p.Parse(reflect.TypeOf(Article{}))
	require.NoError(t, err)
	b, err := p.Parse(reflect.TypeOf(&Article{}))
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestParse_Errors(t *testing.T) {
	type NoKey struct {
		Name string `po:"name,text"`
	}
	type Composite struct {
		A int `po:"a,primaryKey"`
		B int `po:"b,primaryKey"`
	}
	type BadFK struct {
		ID    int `po:"id,primaryKey"`
		Owner int `po:"owner_id,fk(owner)"`
	}
	type BadBelongsTo struct {
		ID     int    `po:"id,primaryKey"`
		Author Author `po:"-,belongsTo"`
	}
	type BadHasMany struct {
		ID       int     `po:"id,primaryKey"`
		Articles Article `po:"-,hasMany"`
	}
	type MissingKeyColumn struct {
		ID     int     `po:"id,primaryKey"`
		Author *Author `po:"-,belongsTo,foreignKey(writer_id)"`
	}
	type Unnamed struct {
		ID   int    `po:"id,primaryKey"`
		Name string `po:"-,notNull"`
	}
	type Duplicate struct {
		ID    int    `po:"id,primaryKey"`
		Name  string `po:"name"`
		Label string `po:"name"`
	}
	type BadOption struct {
		ID int `po:"id,primaryKey,default(1"`
	}

	tests := []struct {
		name    string
		model   any
		invalid bool
	}{
		{"no primary key", NoKey{}, true},
		{"composite key", Composite{}, true},
		{"fk without column", BadFK{}, false},
		{"belongsTo not pointer", BadBelongsTo{}, false},
		{"hasMany not slice", BadHasMany{}, false},
		{"belongsTo unknown column", MissingKeyColumn{}, true},
		{"unnamed column", Unnamed{}, false},
		{"duplicate column", Duplicate{}, true},
		{"unterminated option", BadOption{}, false},
		{"not a struct", 42, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse(reflect.TypeOf(tt.model))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidTable)
			}
		})
	}
}

func TestSplitTag(t *testing.T) {
	assert.Equal(t,
		[]string{"price", "numeric(10,2)", "notNull"},
		splitTag("price, numeric(10,2), notNull"),
	)
	assert.Empty(t, splitTag(""))
	assert.Equal(t, []string{"id"}, splitTag("id,"))
}

func TestToSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"Book":        "book",
		"LineItem":    "line_item",
		"PublisherID": "publisher_id",
		"HTTPServer":  "http_server",
		"Sale2Stock":  "sale2_stock",
	} {
		assert.Equal(t, want, toSnakeCase(in), in)
	}
}

func TestParseReferenceAction(t *testing.T) {
	assert.Equal(t, Cascade, parseReferenceAction("cascade"))
	assert.Equal(t, SetNull, parseReferenceAction("SET NULL"))
	assert.Equal(t, SetDefault, parseReferenceAction("setDefault"))
	assert.Equal(t, Restrict, parseReferenceAction(" restrict "))
	assert.Equal(t, NoAction, parseReferenceAction(""))
}
