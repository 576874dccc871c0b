// Package builder renders and runs typed statements inside a runtime
// transaction. Placeholders follow the dialect of the connection, so the
// same query value runs against PostgreSQL and SQLite.
package builder

// Condition is one WHERE predicate, or a parenthesized group of them when
// Group is set.
type Condition struct {
	Column   string
	Operator Operator
	Value    any
	Logic    LogicOperator
	Not      bool
	Group    []Condition
}

// OrderBy is a single ORDER BY term.
type OrderBy struct {
	Column    string
	Direction OrderDirection
}

// Operator is a comparison understood by the WHERE renderer.
type Operator string

const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "!="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpIn                 Operator = "IN"
	OpNotIn              Operator = "NOT IN"
	OpIsNull             Operator = "IS NULL"
	OpIsNotNull          Operator = "IS NOT NULL"
	OpBetween            Operator = "BETWEEN"
)

// LogicOperator joins a condition to the one before it.
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// OrderDirection is ASC or DESC.
type OrderDirection string

const (
	Asc  OrderDirection = "ASC"
	Desc OrderDirection = "DESC"
)
