package seed

import (
	"context"
	"math/rand/v2"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LadyAlena/sql-homeworks-6/internal/models"
	"github.com/LadyAlena/sql-homeworks-6/internal/store"
	"github.com/LadyAlena/sql-homeworks-6/internal/store/storetest"
)

var (
	pricePattern = regexp.MustCompile(`^([1-5]) \$$`)
	datePattern  = regexp.MustCompile(`^(\d{4})-([1-9]\d?)-([1-9]\d?)$`)
)

func TestNewGenerator_Validation(t *testing.T) {
	src := storetest.Constant(0)

	_, err := NewGenerator(Catalog{Books: []string{"T"}, Shops: []string{"S"}}, src)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = NewGenerator(Catalog{Publishers: []string{""}, Books: []string{"T"}, Shops: []string{"S"}}, src)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	bad := DefaultLimits()
	bad.SaleCount = Range{0, 5}
	_, err = NewGenerator(DefaultCatalog(), src, WithLimits(bad))
	assert.ErrorIs(t, err, ErrInvalidLimits)

	_, err = NewGenerator(DefaultCatalog(), nil)
	assert.Error(t, err)

	g, err := NewGenerator(DefaultCatalog(), src)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), g.Catalog())
}

func TestSeed_Invariants(t *testing.T) {
	limits := DefaultLimits()

	for _, s := range []uint64{1, 2, 3, 42, 2023} {
		t.Run("seed "+strconv.FormatUint(s, 10), func(t *testing.T) {
			ctx := context.Background()
			gw := storetest.NewGateway(t)

			g, err := NewGenerator(DefaultCatalog(), rand.New(rand.NewPCG(s, s)))
			require.NoError(t, err)

			res, err := g.Seed(ctx, gw)
			require.NoError(t, err)

			publishers := idSet(res.Publishers, func(p models.Publisher) int { return p.ID })
			books := idSet(res.Books, func(b models.Book) int { return b.ID })
			shops := idSet(res.Shops, func(s models.Shop) int { return s.ID })
			stocks := idSet(res.Stocks, func(s models.Stock) int { return s.ID })

			assert.Len(t, res.Publishers, len(DefaultCatalog().Publishers))
			assert.Len(t, res.Books, len(DefaultCatalog().Books))
			assert.Len(t, res.Shops, len(DefaultCatalog().Shops))

			for _, b := range res.Books {
				assert.Contains(t, publishers, b.PublisherID)
			}

			assert.True(t, limits.StockRows.Contains(len(res.Stocks)), "stock rows %d", len(res.Stocks))
			for _, st := range res.Stocks {
				assert.Contains(t, books, st.BookID)
				assert.Contains(t, shops, st.ShopID)
				assert.True(t, limits.StockCount.Contains(st.Count), "stock count %d", st.Count)
			}

			assert.True(t, limits.SaleRows.Contains(len(res.Sales)), "sale rows %d", len(res.Sales))
			for _, sale := range res.Sales {
				assert.Contains(t, stocks, sale.StockID)
				assert.True(t, limits.SaleCount.Contains(sale.Count))
				assert.Regexp(t, pricePattern, sale.Price)
				assertDate(t, limits, sale.Date)
			}

			n, err := store.Count[models.Sale](ctx, gw)
			require.NoError(t, err)
			assert.EqualValues(t, len(res.Sales), n)
		})
	}
}

func TestSeed_Deterministic(t *testing.T) {
	run := func() *Result {
		g, err := NewGenerator(DefaultCatalog(), rand.New(rand.NewPCG(7, 11)))
		require.NoError(t, err)
		res, err := g.Seed(context.Background(), storetest.NewGateway(t))
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a, b, "same seed on a fresh database yields the same rows")
}

func TestSeed_ConstantSource(t *testing.T) {
	ctx := context.Background()
	gw := storetest.NewGateway(t)

	catalog := Catalog{
		Publishers: []string{"P1", "P2"},
		Books:      []string{"T1", "T2"},
		Shops:      []string{"S1", "S2"},
	}
	g, err := NewGenerator(catalog, storetest.Constant(0))
	require.NoError(t, err)

	res, err := g.Seed(ctx, gw)
	require.NoError(t, err)

	for _, b := range res.Books {
		assert.Equal(t, res.Publishers[0].ID, b.PublisherID)
	}
	require.Len(t, res.Stocks, 10)
	for _, st := range res.Stocks {
		assert.Equal(t, res.Books[0].ID, st.BookID)
		assert.Equal(t, res.Shops[0].ID, st.ShopID)
		assert.Equal(t, 15, st.Count)
	}
	require.Len(t, res.Sales, 1)
	assert.Equal(t, models.Sale{
		ID:      res.Sales[0].ID,
		Price:   "1 $",
		Date:    "2020-1-1",
		StockID: res.Stocks[0].ID,
		Count:   1,
	}, res.Sales[0])
}

func TestSeed_SalePicksByOrdinal(t *testing.T) {
	ctx := context.Background()
	gw := storetest.NewGateway(t)

	limits := DefaultLimits()
	limits.StockRows = Range{3, 3}
	limits.SaleRows = Range{1, 1}

	// book publisher; stock rows, then per row book, shop, count; sale rows,
	// then stock ordinal, amount, year, month, day, count.
	src := &storetest.Script{Values: []int{
		0,
		0,
		0, 0, 0,
		0, 0, 0,
		0, 0, 0,
		0,
		2, 0, 0, 0, 0, 0,
	}}
	g, err := NewGenerator(Catalog{Publishers: []string{"P"}, Books: []string{"T"}, Shops: []string{"S"}}, src, WithLimits(limits))
	require.NoError(t, err)

	res, err := g.Seed(ctx, gw)
	require.NoError(t, err)
	require.Len(t, res.Sales, 1)
	assert.Equal(t, res.Stocks[2].ID, res.Sales[0].StockID)
}

func TestSeed_NoStockForSales(t *testing.T) {
	limits := DefaultLimits()
	limits.StockRows = Range{0, 0}

	g, err := NewGenerator(DefaultCatalog(), storetest.Constant(0), WithLimits(limits))
	require.NoError(t, err)

	_, err = g.Seed(context.Background(), storetest.NewGateway(t))
	assert.ErrorIs(t, err, ErrNoStock)
}

func TestSeed_LookupMissIsFatal(t *testing.T) {
	ctx := context.Background()
	gw := storetest.NewGateway(t)

	g, err := NewGenerator(DefaultCatalog(), storetest.Constant(0))
	require.NoError(t, err)

	// Books before publishers: the publisher lookup has nothing to find.
	err = g.seedBooks(ctx, gw, &Result{})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "Azbuka")
}

func idSet[T any](rows []T, id func(T) int) map[int]struct{} {
	set := make(map[int]struct{}, len(rows))
	for _, r := range rows {
		set[id(r)] = struct{}{}
	}
	return set
}

func assertDate(t *testing.T, limits Limits, date string) {
	t.Helper()
	m := datePattern.FindStringSubmatch(date)
	require.NotNil(t, m, "date %q", date)

	parts := []struct {
		r Range
		s string
	}{
		{limits.Year, m[1]},
		{limits.Month, m[2]},
		{limits.Day, m[3]},
	}
	for _, p := range parts {
		n, err := strconv.Atoi(p.s)
		require.NoError(t, err)
		assert.True(t, p.r.Contains(n), "%s not in %s", p.s, p.r)
	}
}
