// Package storetest opens throwaway gateways for tests of packages built on
// the store.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/LadyAlena/sql-homeworks-6/internal/models"
	"github.com/LadyAlena/sql-homeworks-6/internal/store"
	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
)

// OpenDB opens an empty SQLite database in the test's temp dir.
func OpenDB(t testing.TB) *runtime.DB {
	t.Helper()

	db, err := runtime.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "bookdist.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

// Gateway returns a gateway on db with a freshly reset schema. The gateway is
// closed when the test ends.
func Gateway(t testing.TB, db *runtime.DB, opts ...store.Option) *store.Gateway {
	t.Helper()
	ctx := context.Background()

	reg, err := models.NewRegistry()
	require.NoError(t, err)

	gw, err := store.Open(ctx, db, reg, zerolog.Nop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close(ctx) })

	require.NoError(t, gw.ResetSchema(ctx))
	return gw
}

// NewGateway is Gateway on a new database.
func NewGateway(t testing.TB) *store.Gateway {
	t.Helper()
	return Gateway(t, OpenDB(t))
}

// Constant is a random source that always yields the same value, clamped to
// the requested bound.
type Constant int

// IntN implements seed.Source.
func (c Constant) IntN(n int) int {
	return min(int(c), n-1)
}

// Script is a random source replaying fixed values in order. Each value is
// taken modulo the requested bound; an exhausted script yields 0.
type Script struct {
	Values []int
	next   int
}

// IntN implements seed.Source.
func (s *Script) IntN(n int) int {
	if s.next >= len(s.Values) {
		return 0
	}
	v := s.Values[s.next]
	s.next++
	return v % n
}
