// Package seed populates the book tables with a random but referentially
// valid dataset. All randomness comes from an injected Source, so a run is
// reproducible from its seed.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/LadyAlena/sql-homeworks-6/internal/models"
	"github.com/LadyAlena/sql-homeworks-6/internal/store"
	"github.com/LadyAlena/sql-homeworks-6/internal/telemetry"
)

var (
	// ErrEmptyCatalog is returned when a catalog list has no entries.
	ErrEmptyCatalog = errors.New("catalog list is empty")

	// ErrNoStock is returned when sales are requested but no stock row exists.
	ErrNoStock = errors.New("no stock to sell from")
)

// Source yields uniformly distributed integers in [0, n). *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// Catalog holds the fixed names the generator draws from.
type Catalog struct {
	Publishers []string
	Books      []string
	Shops      []string
}

// DefaultCatalog returns the names used by the bookdist CLI.
func DefaultCatalog() Catalog {
	return Catalog{
		Publishers: []string{"Azbuka", "Eksmo", "AST", "Piter", "Drofa"},
		Books: []string{
			"War and Peace",
			"Crime and Punishment",
			"The Master and Margarita",
			"Dead Souls",
			"Fathers and Sons",
			"The Idiot",
			"Eugene Onegin",
			"Anna Karenina",
		},
		Shops: []string{"Bookvoed", "Labirint", "Chitai-Gorod", "Moscow House of Books"},
	}
}

// Validate checks that every list has at least one non-empty name.
func (c Catalog) Validate() error {
	lists := []struct {
		name  string
		names []string
	}{
		{"publishers", c.Publishers},
		{"books", c.Books},
		{"shops", c.Shops},
	}
	for _, l := range lists {
		if len(l.names) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyCatalog, l.name)
		}
		for i, n := range l.names {
			if n == "" {
				return fmt.Errorf("%w: %s[%d] has no name", ErrEmptyCatalog, l.name, i)
			}
		}
	}
	return nil
}

// Result lists every row inserted by a Seed call, with generated ids.
type Result struct {
	Publishers []models.Publisher
	Books      []models.Book
	Shops      []models.Shop
	Stocks     []models.Stock
	Sales      []models.Sale
}

// Generator inserts a random dataset through a store gateway.
type Generator struct {
	catalog Catalog
	limits  Limits
	src     Source
	logger  zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLimits overrides DefaultLimits.
func WithLimits(l Limits) Option {
	return func(g *Generator) { g.limits = l }
}

// WithLogger sets the logger for per-step progress.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator validates the catalog and limits and returns a generator
// drawing from src.
func NewGenerator(catalog Catalog, src Source, opts ...Option) (*Generator, error) {
	if src == nil {
		return nil, errors.New("seed: nil source")
	}
	g := &Generator{
		catalog: catalog,
		limits:  DefaultLimits(),
		src:     src,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if err := g.catalog.Validate(); err != nil {
		return nil, err
	}
	if err := g.limits.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Catalog returns the names the generator draws from.
func (g *Generator) Catalog() Catalog {
	return g.catalog
}

// Seed inserts publishers, books, shops, stock and sales, in that order. Any
// failure aborts the remaining steps; the caller rolls the gateway back.
func (g *Generator) Seed(ctx context.Context, gw *store.Gateway) (_ *Result, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "seed.Seed")
	defer func() { telemetry.End(span, err) }()

	res := &Result{}
	steps := []struct {
		name string
		run  func(context.Context, *store.Gateway, *Result) error
	}{
		{"publishers", g.seedPublishers},
		{"books", g.seedBooks},
		{"shops", g.seedShops},
		{"stock", g.seedStock},
		{"sales", g.seedSales},
	}
	for _, step := range steps {
		if err := step.run(ctx, gw, res); err != nil {
			return nil, fmt.Errorf("seed %s: %w", step.name, err)
		}
	}

	span.SetAttributes(
		attribute.Int("seed.books", len(res.Books)),
		attribute.Int("seed.stocks", len(res.Stocks)),
		attribute.Int("seed.sales", len(res.Sales)),
	)
	return res, nil
}

func (g *Generator) seedPublishers(ctx context.Context, gw *store.Gateway, res *Result) error {
	for _, name := range g.catalog.Publishers {
		p, err := store.Insert(ctx, gw, models.Publisher{Name: name})
		if err != nil {
			return err
		}
		res.Publishers = append(res.Publishers, p)
	}
	g.logger.Debug().Int("count", len(res.Publishers)).Msg("publishers inserted")
	return nil
}

func (g *Generator) seedBooks(ctx context.Context, gw *store.Gateway, res *Result) error {
	for _, title := range g.catalog.Books {
		name := g.pick(g.catalog.Publishers)
		publisher, err := store.FindByField[models.Publisher](ctx, gw, "name", name)
		if err != nil {
			return err
		}

		b, err := store.Insert(ctx, gw, models.Book{Title: title, PublisherID: publisher.ID})
		if err != nil {
			return err
		}
		res.Books = append(res.Books, b)
	}
	g.logger.Debug().Int("count", len(res.Books)).Msg("books inserted")
	return nil
}

func (g *Generator) seedShops(ctx context.Context, gw *store.Gateway, res *Result) error {
	for _, name := range g.catalog.Shops {
		s, err := store.Insert(ctx, gw, models.Shop{Name: name})
		if err != nil {
			return err
		}
		res.Shops = append(res.Shops, s)
	}
	g.logger.Debug().Int("count", len(res.Shops)).Msg("shops inserted")
	return nil
}

func (g *Generator) seedStock(ctx context.Context, gw *store.Gateway, res *Result) error {
	rows := g.between(g.limits.StockRows)
	for range rows {
		book, err := store.FindByField[models.Book](ctx, gw, "title", g.pick(g.catalog.Books))
		if err != nil {
			return err
		}
		shop, err := store.FindByField[models.Shop](ctx, gw, "name", g.pick(g.catalog.Shops))
		if err != nil {
			return err
		}

		s, err := store.Insert(ctx, gw, models.Stock{
			BookID: book.ID,
			ShopID: shop.ID,
			Count:  g.between(g.limits.StockCount),
		})
		if err != nil {
			return err
		}
		res.Stocks = append(res.Stocks, s)
	}
	g.logger.Debug().Int("count", rows).Msg("stock inserted")
	return nil
}

func (g *Generator) seedSales(ctx context.Context, gw *store.Gateway, res *Result) error {
	rows := g.between(g.limits.SaleRows)
	if rows == 0 {
		return nil
	}

	// Sales pick from the stock rows actually stored, never from guessed ids.
	stocks, err := store.FindAll[models.Stock](ctx, gw)
	if err != nil {
		return err
	}
	if len(stocks) == 0 {
		return ErrNoStock
	}

	for range rows {
		stock := stocks[g.src.IntN(len(stocks))]
		s, err := store.Insert(ctx, gw, models.Sale{
			Price: FormatPrice(g.between(g.limits.Amount)),
			Date: FormatDate(
				g.between(g.limits.Year),
				g.between(g.limits.Month),
				g.between(g.limits.Day),
			),
			StockID: stock.ID,
			Count:   g.between(g.limits.SaleCount),
		})
		if err != nil {
			return err
		}
		res.Sales = append(res.Sales, s)
	}
	g.logger.Debug().Int("count", rows).Msg("sales inserted")
	return nil
}

// between returns a uniform integer in r.
func (g *Generator) between(r Range) int {
	return r.Min + g.src.IntN(r.Max-r.Min+1)
}

func (g *Generator) pick(names []string) string {
	return names[g.src.IntN(len(names))]
}
