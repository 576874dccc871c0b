package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite" // register the "sqlite" database/sql driver
)

// DB represents a database connection.
type DB struct {
	driver Driver
	pool   *pgxpool.Pool
	sqlDB  *sql.DB
	config *Config
}

// Config represents database configuration.
type Config struct {
	Driver   Driver
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32

	// Path is the database file used by the SQLite driver.
	Path string
}

// TxOptions configures a transaction.
type TxOptions struct {
	ReadOnly bool
}

// NewDB creates a new DB instance from a connection pool.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{
		driver: DriverPostgres,
		pool:   pool,
		config: &Config{Driver: DriverPostgres},
	}
}

// Connect opens a database described by config.
func Connect(ctx context.Context, config *Config) (*DB, error) {
	if config.Driver == DriverSQLite {
		return OpenSQLite(ctx, config.Path)
	}

	connString := buildConnectionString(config)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply pool configuration
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}

	db, err := connectPool(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	db.config = config
	return db, nil
}

// ConnectWithURL creates a new DB instance using a connection URL.
// URLs starting with "sqlite:" open an embedded SQLite database instead.
func ConnectWithURL(ctx context.Context, url string) (*DB, error) {
	if path, ok := strings.CutPrefix(url, "sqlite:"); ok {
		return OpenSQLite(ctx, strings.TrimPrefix(path, "//"))
	}

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}
	return connectPool(ctx, poolConfig)
}

func connectPool(ctx context.Context, poolConfig *pgxpool.Config) (*DB, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		driver: DriverPostgres,
		pool:   pool,
		config: &Config{Driver: DriverPostgres},
	}, nil
}

// OpenSQLite opens (or creates) the SQLite database at path with foreign key
// enforcement switched on. ":memory:" is accepted for throwaway databases.
func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		driver: DriverSQLite,
		sqlDB:  sqlDB,
		config: &Config{Driver: DriverSQLite, Path: path},
	}, nil
}

// Driver returns the backend of the connection.
func (db *DB) Driver() Driver {
	return db.driver
}

// Dialect returns the SQL dialect of the connection.
func (db *DB) Dialect() Dialect {
	return DialectFor(db.driver)
}

// Pool returns the underlying pgxpool.Pool, or nil for SQLite connections.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the database connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.sqlDB != nil {
		_ = db.sqlDB.Close()
	}
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	switch {
	case db.pool != nil:
		return db.pool.Ping(ctx)
	case db.sqlDB != nil:
		return db.sqlDB.PingContext(ctx)
	}
	return ErrNoConnection
}

// Begin starts a new transaction.
func (db *DB) Begin(ctx context.Context) (Tx, error) {
	return db.BeginTx(ctx, TxOptions{})
}

// BeginTx starts a new transaction with options.
func (db *DB) BeginTx(ctx context.Context, opts TxOptions) (Tx, error) {
	switch {
	case db.pool != nil:
		pgOpts := pgx.TxOptions{}
		if opts.ReadOnly {
			pgOpts.AccessMode = pgx.ReadOnly
		}
		tx, err := db.pool.BeginTx(ctx, pgOpts)
		if err != nil {
			return nil, err
		}
		return &pgxTx{tx: tx}, nil
	case db.sqlDB != nil:
		// SQLite has no read-only transaction mode; ReadOnly is advisory there.
		tx, err := db.sqlDB.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		return &sqlTx{tx: tx}, nil
	}
	return nil, ErrNoConnection
}

// buildConnectionString builds a PostgreSQL connection string from config.
func buildConnectionString(config *Config) string {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	port := config.Port
	if port == 0 {
		port = 5432
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host,
		port,
		config.User,
		config.Password,
		config.Database,
		sslMode,
	)
}

// DefaultConfig returns the connection used by the seeding tool when nothing
// else is configured.
func DefaultConfig() *Config {
	return &Config{
		Driver:   DriverPostgres,
		Host:     "localhost",
		Port:     5432,
		Database: "book_sales",
		User:     "test_user",
		Password: "test_password",
		SSLMode:  "prefer",
		MaxConns: 4,
		MinConns: 1,
		Path:     "book_sales.db",
	}
}
