package schema

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// StructTagKey is the struct tag read by the parser, e.g. `po:"name,text,notNull"`.
const StructTagKey = "po"

// TableNamer lets a model override the table name derived from its type name.
type TableNamer interface {
	TableName() string
}

// Parser turns tagged model structs into table metadata.
// A Parser is not safe for concurrent use; the registry serialises access.
type Parser struct {
	typeMapper *TypeMapper
	cache      map[reflect.Type]*TableMetadata
}

// NewParser returns a parser using DefaultTypeMapper.
func NewParser() *Parser {
	return &Parser{
		typeMapper: DefaultTypeMapper,
		cache:      make(map[reflect.Type]*TableMetadata),
	}
}

// Parse returns the metadata of modelType, which must be a struct or a
// pointer to one. Results are cached per type.
func (p *Parser) Parse(modelType reflect.Type) (*TableMetadata, error) {
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}
	if cached, ok := p.cache[modelType]; ok {
		return cached, nil
	}

	table := &TableMetadata{
		Name:        tableName(modelType),
		GoType:      modelType,
		Columns:     []ColumnMetadata{},
		ForeignKeys: []ForeignKeyMetadata{},
	}

	for i := range modelType.NumField() {
		field := modelType.Field(i)
		raw, ok := field.Tag.Lookup(StructTagKey)
		if !ok || !field.IsExported() {
			continue
		}
		t, err := parseTag(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		if t.isRelationship() {
			rel, err := p.parseRelationship(field, t, table)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
			table.Relationships = append(table.Relationships, *rel)
			continue
		}
		if t.column == "" || t.column == "-" {
			return nil, fmt.Errorf("field %s: column name is required", field.Name)
		}

		column := p.column(field, t, i)
		table.Columns = append(table.Columns, column)

		if t.has("primaryKey") {
			if table.PrimaryKey == nil {
				table.PrimaryKey = &PrimaryKeyMetadata{Name: table.Name + "_pkey"}
			}
			table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, column.Name)
		}
		if t.has("fk") {
			fk, err := foreignKey(table.Name, column.Name, t)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
			table.ForeignKeys = append(table.ForeignKeys, fk)
		}
	}

	if err := Validate(table); err != nil {
		return nil, fmt.Errorf("model %s: %w", modelType.Name(), err)
	}

	p.cache[modelType] = table
	return table, nil
}

func tableName(modelType reflect.Type) string {
	if n, ok := reflect.New(modelType).Interface().(TableNamer); ok {
		return n.TableName()
	}
	return toSnakeCase(modelType.Name())
}

func (p *Parser) column(field reflect.StructField, t *tag, position int) ColumnMetadata {
	column := ColumnMetadata{
		Name:          t.column,
		GoField:       field.Name,
		GoType:        field.Type,
		Position:      position,
		SQLType:       t.sqlType(),
		Nullable:      IsNullable(field.Type) || !(t.has("notNull") || t.has("primaryKey")),
		Unique:        t.has("unique"),
		AutoIncrement: t.has("serial") || t.has("autoIncrement"),
	}
	if column.SQLType == "" {
		column.SQLType = p.typeMapper.GoTypeToSQL(field.Type)
	}
	if def, ok := t.opts["default"]; ok && def != "" {
		column.Default = &def
	}
	return column
}

// foreignKey reads an fk(table.column) option.
func foreignKey(tableName, columnName string, t *tag) (ForeignKeyMetadata, error) {
	ref := t.get("fk")
	refTable, refColumn, ok := strings.Cut(ref, ".")
	if !ok || refTable == "" || refColumn == "" {
		return ForeignKeyMetadata{}, fmt.Errorf("invalid foreign key reference %q, want table.column", ref)
	}
	return ForeignKeyMetadata{
		Name:              "fk_" + tableName + "_" + columnName,
		Columns:           []string{columnName},
		ReferencedTable:   refTable,
		ReferencedColumns: []string{refColumn},
		OnDelete:          parseReferenceAction(t.get("onDelete")),
		OnUpdate:          parseReferenceAction(t.get("onUpdate")),
	}, nil
}

// tag is a parsed `po` struct tag: the column name, then options written
// either as a bare word or as word(value).
type tag struct {
	column string
	opts   map[string]string
}

func parseTag(raw string) (*tag, error) {
	parts := splitTag(raw)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty %s tag", StructTagKey)
	}
	t := &tag{column: parts[0], opts: make(map[string]string, len(parts)-1)}
	for _, opt := range parts[1:] {
		name, value, hasValue := strings.Cut(opt, "(")
		if !hasValue {
			t.opts[opt] = ""
			continue
		}
		value, closed := strings.CutSuffix(value, ")")
		if !closed {
			return nil, fmt.Errorf("unterminated option %q", opt)
		}
		t.opts[name] = value
	}
	return t, nil
}

func (t *tag) has(key string) bool {
	_, ok := t.opts[key]
	return ok
}

func (t *tag) get(key string) string { return t.opts[key] }

func (t *tag) isRelationship() bool {
	return t.has("belongsTo") || t.has("hasMany")
}

// sqlTypes are the column types a tag may name directly.
var sqlTypes = []string{
	"varchar", "text", "char",
	"smallint", "integer", "bigint",
	"numeric", "decimal", "real", "double precision",
	"boolean",
	"date", "timestamp", "timestamptz",
}

// sqlType returns the column type named in the tag, with its modifier if
// one was given, or "" when the Go type decides.
func (t *tag) sqlType() string {
	for _, name := range sqlTypes {
		mod, ok := t.opts[name]
		switch {
		case !ok:
			continue
		case mod != "":
			return name + "(" + mod + ")"
		default:
			return name
		}
	}
	return ""
}

// splitTag splits on commas outside parentheses and trims each part.
func splitTag(raw string) []string {
	var parts []string
	depth, start := 0, 0
	for i, ch := range raw {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(raw[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(raw[start:]); last != "" {
		parts = append(parts, last)
	}
	return parts
}

// toSnakeCase converts a Go identifier to snake_case, keeping acronyms
// together: LineItem becomes line_item, PublisherID becomes publisher_id.
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func parseReferenceAction(action string) ReferenceAction {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(action), " ", "")) {
	case "CASCADE":
		return Cascade
	case "RESTRICT":
		return Restrict
	case "SETNULL":
		return SetNull
	case "SETDEFAULT":
		return SetDefault
	default:
		return NoAction
	}
}
