// Package config reads bookdist settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
)

// Config holds every setting a bookdist command needs. Command line flags
// override these values.
type Config struct {
	Driver   string `env:"BOOKDIST_DRIVER"   envDefault:"postgres"`
	URL      string `env:"BOOKDIST_DB_URL"`
	Host     string `env:"BOOKDIST_DB_HOST" envDefault:"localhost"`
	Port     int    `env:"BOOKDIST_DB_PORT" envDefault:"5432"`
	Database string `env:"BOOKDIST_DB_NAME" envDefault:"book_sales"`
	User     string `env:"BOOKDIST_DB_USER" envDefault:"test_user"`
	Password string `env:"BOOKDIST_DB_PASSWORD" envDefault:"test_password"`
	SSLMode  string `env:"BOOKDIST_DB_SSLMODE" envDefault:"disable"`
	// SQLitePath is used when Driver is sqlite and URL is empty.
	SQLitePath string `env:"BOOKDIST_SQLITE_PATH" envDefault:"bookdist.db"`

	LogLevel string `env:"BOOKDIST_LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"BOOKDIST_LOG_JSON"`

	// OTLPEndpoint enables trace export over OTLP/HTTP when set.
	OTLPEndpoint string `env:"BOOKDIST_OTLP_ENDPOINT"`
	// MetricsFile receives run counters in Prometheus text format when set.
	MetricsFile string `env:"BOOKDIST_METRICS_FILE"`
}

// Load reads the optional dotenv files, then the environment. A missing
// dotenv file is not an error; variables already set are never overwritten.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the driver name and port.
func (c *Config) Validate() error {
	if _, err := runtime.ParseDriver(c.Driver); err != nil {
		return err
	}
	if c.URL == "" && c.Port <= 0 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// DBConfig converts the settings into a runtime connection config.
func (c *Config) DBConfig() (*runtime.Config, error) {
	driver, err := runtime.ParseDriver(c.Driver)
	if err != nil {
		return nil, err
	}

	db := runtime.DefaultConfig()
	db.Driver = driver
	db.Host = c.Host
	db.Port = c.Port
	db.Database = c.Database
	db.User = c.User
	db.Password = c.Password
	db.SSLMode = c.SSLMode
	db.Path = c.SQLitePath
	return db, nil
}
