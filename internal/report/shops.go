// Package report answers queries over the seeded book tables.
package report

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/LadyAlena/sql-homeworks-6/internal/models"
	"github.com/LadyAlena/sql-homeworks-6/internal/store"
	"github.com/LadyAlena/sql-homeworks-6/internal/telemetry"
	"github.com/LadyAlena/sql-homeworks-6/pkg/builder"
)

// ErrOrdinalOutOfRange is returned when a publisher ordinal does not point
// into the publisher name list.
var ErrOrdinalOutOfRange = errors.New("publisher ordinal out of range")

// PublisherShops is the answer to "where are this publisher's books sold".
type PublisherShops struct {
	Publisher string
	// Shops holds distinct shop names in lexicographic order. It is empty,
	// never nil, when the publisher has no stocked books.
	Shops []string
}

// ShopsForPublisher resolves the publisher at the 1-based ordinal of names
// and lists the shops stocking any of its books.
func ShopsForPublisher(ctx context.Context, gw *store.Gateway, names []string, ordinal int) (*PublisherShops, error) {
	if ordinal < 1 || ordinal > len(names) {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrOrdinalOutOfRange, ordinal, len(names))
	}

	publisher, err := store.FindByField[models.Publisher](ctx, gw, "name", names[ordinal-1])
	if err != nil {
		return nil, err
	}
	return shopsFor(ctx, gw, publisher)
}

// ShopsForPublisherID is ShopsForPublisher for callers holding the stored id.
func ShopsForPublisherID(ctx context.Context, gw *store.Gateway, id int) (*PublisherShops, error) {
	publisher, err := store.FindByID[models.Publisher](ctx, gw, id)
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		return nil, fmt.Errorf("%w: publisher with id = %d", store.ErrNotFound, id)
	}
	return shopsFor(ctx, gw, *publisher)
}

func shopsFor(ctx context.Context, gw *store.Gateway, publisher models.Publisher) (_ *PublisherShops, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "report.ShopsForPublisher")
	span.SetAttributes(attribute.Int("publisher.id", publisher.ID))
	defer func() { telemetry.End(span, err) }()

	books, err := store.Select[models.Book](gw)
	if err != nil {
		return nil, err
	}
	owned, err := books.Where(builder.Eq("publisher_id", publisher.ID)).Preload("Stocks").All(ctx)
	if err != nil {
		return nil, fmt.Errorf("books of publisher %q: %w", publisher.Name, err)
	}

	shopIDs := make(map[int]struct{})
	for _, b := range owned {
		for _, st := range b.Stocks {
			shopIDs[st.ShopID] = struct{}{}
		}
	}

	result := &PublisherShops{Publisher: publisher.Name, Shops: []string{}}
	if len(shopIDs) == 0 {
		return result, nil
	}

	ids := make([]any, 0, len(shopIDs))
	for _, id := range slices.Sorted(maps.Keys(shopIDs)) {
		ids = append(ids, id)
	}

	shops, err := store.Select[models.Shop](gw)
	if err != nil {
		return nil, err
	}
	stocked, err := shops.Where(builder.In("id", ids...)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("shops of publisher %q: %w", publisher.Name, err)
	}

	names := make(map[string]struct{}, len(stocked))
	for _, s := range stocked {
		names[s.Name] = struct{}{}
	}
	result.Shops = slices.Sorted(maps.Keys(names))

	span.SetAttributes(attribute.Int("shops", len(result.Shops)))
	return result, nil
}
