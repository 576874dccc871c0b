// Package app runs the bookdist use cases: reset and seed the tables, then
// report which shops sell a publisher's books.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/LadyAlena/sql-homeworks-6/internal/metrics"
	"github.com/LadyAlena/sql-homeworks-6/internal/models"
	"github.com/LadyAlena/sql-homeworks-6/internal/report"
	"github.com/LadyAlena/sql-homeworks-6/internal/seed"
	"github.com/LadyAlena/sql-homeworks-6/internal/store"
	"github.com/LadyAlena/sql-homeworks-6/internal/telemetry"
	"github.com/LadyAlena/sql-homeworks-6/pkg/registry"
	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
)

// Chooser returns the 1-based ordinal of the publisher to report on.
type Chooser func(ctx context.Context, publishers []string) (int, error)

// Fixed returns a Chooser that always picks ordinal.
func Fixed(ordinal int) Chooser {
	return func(context.Context, []string) (int, error) { return ordinal, nil }
}

// App holds the long-lived pieces shared by every command.
type App struct {
	db       *runtime.DB
	registry *registry.Registry
	logger   zerolog.Logger
	metrics  *metrics.Recorder
	catalog  seed.Catalog
	limits   seed.Limits
}

// Option configures New.
type Option func(*App)

// WithMetrics records run counters on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *App) { a.metrics = r }
}

// WithCatalog replaces seed.DefaultCatalog.
func WithCatalog(c seed.Catalog) Option {
	return func(a *App) { a.catalog = c }
}

// WithLimits replaces seed.DefaultLimits.
func WithLimits(l seed.Limits) Option {
	return func(a *App) { a.limits = l }
}

// New returns an App on db. The caller keeps ownership of db.
func New(db *runtime.DB, logger zerolog.Logger, opts ...Option) (*App, error) {
	reg, err := models.NewRegistry()
	if err != nil {
		return nil, err
	}

	a := &App{
		db:       db,
		registry: reg,
		logger:   logger,
		catalog:  seed.DefaultCatalog(),
		limits:   seed.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.catalog.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Catalog returns the names used for seeding and ordinal lookup.
func (a *App) Catalog() seed.Catalog {
	return a.catalog
}

// RunResult is the outcome of a full Run.
type RunResult struct {
	RunID string
	Seed  *seed.Result
	Shops *report.PublisherShops
}

// Run resets the schema, seeds it from src, asks choose for a publisher and
// reports its shops, all in one transaction. Nothing is committed unless
// every step succeeds.
func (a *App) Run(ctx context.Context, src seed.Source, choose Chooser) (_ *RunResult, err error) {
	runID, logger := a.startRun("run")
	ctx, span := telemetry.Tracer().Start(ctx, "app.Run")
	span.SetAttributes(attribute.String("run.id", runID))
	defer func() {
		telemetry.End(span, err)
		a.finishRun(logger, "run", err)
	}()

	gw, err := store.Open(ctx, a.db, a.registry, logger, store.WithMetrics(a.metrics))
	if err != nil {
		return nil, err
	}
	defer a.closeGateway(ctx, logger, gw)

	seeded, err := a.seed(ctx, gw, src, logger)
	if err != nil {
		return nil, err
	}

	ordinal, err := choose(ctx, a.catalog.Publishers)
	if err != nil {
		return nil, err
	}
	shops, err := report.ShopsForPublisher(ctx, gw, a.catalog.Publishers, ordinal)
	if err != nil {
		return nil, err
	}

	if err := gw.Commit(ctx); err != nil {
		return nil, err
	}
	return &RunResult{RunID: runID, Seed: seeded, Shops: shops}, nil
}

// Seed resets the schema and seeds it from src, then commits.
func (a *App) Seed(ctx context.Context, src seed.Source) (_ *seed.Result, err error) {
	runID, logger := a.startRun("seed")
	ctx, span := telemetry.Tracer().Start(ctx, "app.Seed")
	span.SetAttributes(attribute.String("run.id", runID))
	defer func() {
		telemetry.End(span, err)
		a.finishRun(logger, "seed", err)
	}()

	gw, err := store.Open(ctx, a.db, a.registry, logger, store.WithMetrics(a.metrics))
	if err != nil {
		return nil, err
	}
	defer a.closeGateway(ctx, logger, gw)

	seeded, err := a.seed(ctx, gw, src, logger)
	if err != nil {
		return nil, err
	}
	if err := gw.Commit(ctx); err != nil {
		return nil, err
	}
	return seeded, nil
}

// Shops reports on an already seeded database in a read-only transaction.
func (a *App) Shops(ctx context.Context, ordinal int) (_ *report.PublisherShops, err error) {
	_, logger := a.startRun("shops")
	ctx, span := telemetry.Tracer().Start(ctx, "app.Shops")
	defer func() {
		telemetry.End(span, err)
		a.finishRun(logger, "shops", err)
	}()

	gw, err := store.Open(ctx, a.db, a.registry, logger, store.WithMetrics(a.metrics), store.WithReadOnly())
	if err != nil {
		return nil, err
	}
	defer a.closeGateway(ctx, logger, gw)

	shops, err := report.ShopsForPublisher(ctx, gw, a.catalog.Publishers, ordinal)
	if runtime.IsUndefinedTable(err) {
		return nil, fmt.Errorf("database is not seeded, run `bookdist seed` first: %w", err)
	}
	return shops, err
}

func (a *App) seed(ctx context.Context, gw *store.Gateway, src seed.Source, logger zerolog.Logger) (*seed.Result, error) {
	if err := gw.ResetSchema(ctx); err != nil {
		return nil, err
	}

	gen, err := seed.NewGenerator(a.catalog, src, seed.WithLimits(a.limits), seed.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	res, err := gen.Seed(ctx, gw)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("publishers", len(res.Publishers)).
		Int("books", len(res.Books)).
		Int("shops", len(res.Shops)).
		Int("stocks", len(res.Stocks)).
		Int("sales", len(res.Sales)).
		Msg("database seeded")
	return res, nil
}

func (a *App) startRun(command string) (string, zerolog.Logger) {
	runID := uuid.NewString()
	logger := a.logger.With().Str("run_id", runID).Str("command", command).Logger()
	logger.Debug().Msg("run started")
	return runID, logger
}

func (a *App) finishRun(logger zerolog.Logger, command string, err error) {
	a.metrics.RunFinished(command, err)
	if err != nil {
		logger.Error().Err(err).Msg("run failed, changes rolled back")
		return
	}
	logger.Debug().Msg("run finished")
}

func (a *App) closeGateway(ctx context.Context, logger zerolog.Logger, gw *store.Gateway) {
	// The request context may already be cancelled; the rollback must still run.
	if err := gw.Close(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, store.ErrClosed) {
		logger.Warn().Err(err).Msg("rollback failed")
	}
}
