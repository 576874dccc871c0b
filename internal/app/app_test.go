package app

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LadyAlena/sql-homeworks-6/internal/metrics"
	"github.com/LadyAlena/sql-homeworks-6/internal/seed"
	"github.com/LadyAlena/sql-homeworks-6/internal/store/storetest"
	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
)

var scenario = seed.Catalog{
	Publishers: []string{"P1", "P2"},
	Books:      []string{"T1"},
	Shops:      []string{"S1", "S2"},
}

func newApp(t *testing.T, db *runtime.DB, logs *bytes.Buffer, opts ...Option) *App {
	t.Helper()
	limits := seed.DefaultLimits()
	limits.StockRows = seed.Range{Min: 1, Max: 1}

	opts = append([]Option{WithCatalog(scenario), WithLimits(limits)}, opts...)
	a, err := New(db, zerolog.New(logs), opts...)
	require.NoError(t, err)
	return a
}

func TestRun_CommitsAndReports(t *testing.T) {
	ctx := context.Background()
	db := storetest.OpenDB(t)
	var logs bytes.Buffer
	rec := metrics.New()
	a := newApp(t, db, &logs, WithMetrics(rec))

	var offered []string
	choose := func(_ context.Context, publishers []string) (int, error) {
		offered = publishers
		return 1, nil
	}

	res, err := a.Run(ctx, storetest.Constant(0), choose)
	require.NoError(t, err)
	assert.Equal(t, scenario.Publishers, offered)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "P1", res.Shops.Publisher)
	assert.Equal(t, []string{"S1"}, res.Shops.Shops)
	assert.Len(t, res.Seed.Stocks, 1)
	assert.Contains(t, logs.String(), res.RunID)

	// Committed: a fresh read-only transaction sees the same answer.
	again, err := a.Shops(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, res.Shops, again)

	empty, err := a.Shops(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty.Shops)

	series, err := testutil.GatherAndCount(rec.Registry(), "bookdist_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one run and one shops series")
}

func TestRun_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db := storetest.OpenDB(t)
	var logs bytes.Buffer
	a := newApp(t, db, &logs)

	boom := errors.New("terminal closed")
	_, err := a.Run(ctx, storetest.Constant(0), func(context.Context, []string) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, logs.String(), "rolled back")

	// Not even the tables survive the failed run.
	_, err = a.Shops(ctx, 1)
	assert.ErrorIs(t, err, runtime.ErrUndefinedTable)
	assert.Contains(t, err.Error(), "not seeded")
}

func TestRun_BadOrdinal(t *testing.T) {
	a := newApp(t, storetest.OpenDB(t), &bytes.Buffer{})

	_, err := a.Run(context.Background(), storetest.Constant(0), Fixed(3))
	assert.Error(t, err)
}

func TestSeed_ThenShops(t *testing.T) {
	ctx := context.Background()
	db := storetest.OpenDB(t)
	a, err := New(db, zerolog.Nop())
	require.NoError(t, err)

	res, err := a.Seed(ctx, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Len(t, res.Publishers, len(a.Catalog().Publishers))

	for ordinal := range len(a.Catalog().Publishers) {
		got, err := a.Shops(ctx, ordinal+1)
		require.NoError(t, err)
		assert.Equal(t, a.Catalog().Publishers[ordinal], got.Publisher)
		assert.IsNonDecreasing(t, got.Shops)
	}

	// Reseeding from the same seed rebuilds the same dataset.
	again, err := a.Seed(ctx, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Len(t, again.Stocks, len(res.Stocks))
	assert.Len(t, again.Sales, len(res.Sales))
}

func TestNew_RejectsEmptyCatalog(t *testing.T) {
	_, err := New(storetest.OpenDB(t), zerolog.Nop(), WithCatalog(seed.Catalog{}))
	assert.ErrorIs(t, err, seed.ErrEmptyCatalog)
}
