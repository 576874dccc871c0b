package runtime

import (
	"fmt"
	"strings"
)

// Driver identifies the database backend behind a DB.
type Driver string

const (
	// DriverPostgres talks to PostgreSQL through a pgx connection pool.
	DriverPostgres Driver = "postgres"
	// DriverSQLite talks to an embedded SQLite database through modernc.org/sqlite.
	DriverSQLite Driver = "sqlite"
)

// ParseDriver converts a user supplied driver name into a Driver.
func ParseDriver(name string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", name)
	}
}

// Dialect captures the SQL differences between the supported backends.
type Dialect interface {
	// Name returns the driver this dialect belongs to.
	Name() Driver
	// Placeholder returns the bind parameter for the n-th argument (1-based).
	Placeholder(n int) string
	// SerialPrimaryKey returns the column definition of an auto-generated integer key.
	SerialPrimaryKey(column string) string
}

// DialectFor returns the dialect of the given driver.
func DialectFor(d Driver) Dialect {
	if d == DriverSQLite {
		return SQLite
	}
	return Postgres
}

var (
	// Postgres is the PostgreSQL dialect.
	Postgres Dialect = postgresDialect{}
	// SQLite is the SQLite dialect.
	SQLite Dialect = sqliteDialect{}
)

type postgresDialect struct{}

func (postgresDialect) Name() Driver { return DriverPostgres }

func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) SerialPrimaryKey(column string) string {
	return column + " serial PRIMARY KEY"
}

type sqliteDialect struct{}

func (sqliteDialect) Name() Driver { return DriverSQLite }

// Placeholder returns "?"; arguments are always bound in order.
func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) SerialPrimaryKey(column string) string {
	return column + " integer PRIMARY KEY AUTOINCREMENT"
}
