package schema

import (
	"fmt"
	"reflect"
)

// RelationType is the kind of a relationship between two tables.
type RelationType string

const (
	// BelongsTo marks a child → parent link; the foreign key lives on the source table.
	BelongsTo RelationType = "belongsTo"
	// HasMany marks a parent → children link; the foreign key lives on the target table.
	HasMany RelationType = "hasMany"
)

// RelationshipMetadata describes a relationship field of a model.
type RelationshipMetadata struct {
	Type        RelationType
	SourceTable string
	SourceField string
	TargetType  reflect.Type
	TargetTable string
	// ForeignKey is the referencing column: on the source table for
	// BelongsTo, on the target table for HasMany.
	ForeignKey string
	// References is the referenced column: on the target table for
	// BelongsTo, on the source table for HasMany.
	References string
}

// parseRelationship reads a belongsTo or hasMany field. Missing foreignKey
// and references options fall back to <type>_id and id.
func (p *Parser) parseRelationship(field reflect.StructField, t *tag, sourceTable *TableMetadata) (*RelationshipMetadata, error) {
	rel := &RelationshipMetadata{
		SourceTable: sourceTable.Name,
		SourceField: field.Name,
		ForeignKey:  t.get("foreignKey"),
		References:  t.get("references"),
	}

	fieldType := field.Type
	switch {
	case t.has("belongsTo"):
		rel.Type = BelongsTo
		if fieldType.Kind() != reflect.Pointer {
			return nil, fmt.Errorf("belongsTo field must be a pointer, got %s", fieldType)
		}
	case t.has("hasMany"):
		rel.Type = HasMany
		if fieldType.Kind() != reflect.Slice {
			return nil, fmt.Errorf("hasMany field must be a slice, got %s", fieldType)
		}
		fieldType = fieldType.Elem()
	}

	for fieldType.Kind() == reflect.Pointer {
		fieldType = fieldType.Elem()
	}
	if fieldType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("relationship target must be a struct, got %s", fieldType)
	}
	rel.TargetType = fieldType
	rel.TargetTable = tableName(fieldType)

	if rel.ForeignKey == "" {
		switch rel.Type {
		case BelongsTo:
			// e.g. Book.Publisher -> publisher_id on book
			rel.ForeignKey = toSnakeCase(fieldType.Name()) + "_id"
		case HasMany:
			// e.g. Publisher.Books -> publisher_id on book
			rel.ForeignKey = toSnakeCase(sourceTable.GoType.Name()) + "_id"
		}
	}
	if rel.References == "" {
		rel.References = "id"
	}
	return rel, nil
}

// GetRelationship returns a relationship by source field name.
func (t *TableMetadata) GetRelationship(fieldName string) *RelationshipMetadata {
	for i := range t.Relationships {
		if t.Relationships[i].SourceField == fieldName {
			return &t.Relationships[i]
		}
	}
	return nil
}

// GetRelationshipsByType returns all relationships of a specific type.
func (t *TableMetadata) GetRelationshipsByType(relType RelationType) []RelationshipMetadata {
	var result []RelationshipMetadata
	for _, rel := range t.Relationships {
		if rel.Type == relType {
			result = append(result, rel)
		}
	}
	return result
}
