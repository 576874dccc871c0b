package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/LadyAlena/sql-homeworks-6/cmd/bookdist/output"
	"github.com/LadyAlena/sql-homeworks-6/internal/app"
	"github.com/LadyAlena/sql-homeworks-6/internal/config"
	"github.com/LadyAlena/sql-homeworks-6/internal/logging"
	"github.com/LadyAlena/sql-homeworks-6/internal/metrics"
	"github.com/LadyAlena/sql-homeworks-6/internal/telemetry"
	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dbURL      string
	driver     string
	verbose    bool
	jsonOutput bool
}

// NewRootCmd builds the bookdist command tree.
func NewRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "bookdist",
		Short: "bookdist - seed and query a book distribution database",
		Long: `bookdist fills a small book distribution database (publishers, books,
shops, stock and sales) with random but consistent data and reports
which shops sell the books of a given publisher.

Settings are read from BOOKDIST_* environment variables and an optional
.env file; command line flags take precedence.`,
		Version:       "0.3.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.dbURL, "db", "", "Database connection URL (postgres://... or sqlite:path)")
	rootCmd.PersistentFlags().StringVar(&flags.driver, "driver", "", "Database driver: postgres or sqlite")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(
		newRunCmd(&flags),
		newSeedCmd(&flags),
		newShopsCmd(&flags),
		newSchemaCmd(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		output.Error(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

// session is everything a database command needs for one invocation.
type session struct {
	logger zerolog.Logger
	app    *app.App
}

// withSession loads the configuration, connects to the database and runs fn.
// Tracing, metrics export and the connection are torn down on every path.
func withSession(cmd *cobra.Command, flags *globalFlags, command string, fn func(context.Context, *session) error) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flags.driver != "" {
		cfg.Driver = flags.driver
	}
	if flags.dbURL != "" {
		cfg.URL = flags.dbURL
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	if flags.jsonOutput {
		cfg.LogJSON = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Options{Out: cmd.ErrOrStderr(), Level: cfg.LogLevel, JSON: cfg.LogJSON})

	shutdown, err := telemetry.Setup(ctx, "bookdist", cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Warn().Err(shutdownErr).Msg("trace export failed")
		}
	}()

	rec := metrics.New()
	defer func() {
		if writeErr := rec.WriteTextfile(cfg.MetricsFile); writeErr != nil {
			logger.Warn().Err(writeErr).Str("path", cfg.MetricsFile).Msg("metrics export failed")
		}
	}()

	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Debug().Str("driver", string(db.Driver())).Str("command", command).Msg("connected")

	a, err := app.New(db, logger, app.WithMetrics(rec))
	if err != nil {
		return err
	}

	return fn(ctx, &session{logger: logger, app: a})
}

// connect opens the database named by cfg. A sqlite: URL selects SQLite
// whatever the driver setting says.
func connect(ctx context.Context, cfg *config.Config) (*runtime.DB, error) {
	if cfg.URL != "" {
		db, err := runtime.ConnectWithURL(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	}

	dbCfg, err := cfg.DBConfig()
	if err != nil {
		return nil, err
	}
	db, err := runtime.Connect(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// errUsage marks errors caused by bad flag values.
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
