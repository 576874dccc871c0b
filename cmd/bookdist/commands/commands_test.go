package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LadyAlena/sql-homeworks-6/internal/seed"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func sqliteURL(t *testing.T) string {
	t.Helper()
	return "sqlite:" + filepath.Join(t.TempDir(), "bookdist.db")
}

func TestSchemaCommand(t *testing.T) {
	res := execute(t, "", "schema", "--dialect", "sqlite", "--drop")
	require.NoError(t, res.err)

	out := res.stdout
	assert.Contains(t, out, "AUTOINCREMENT")
	assert.Less(t, strings.Index(out, `DROP TABLE IF EXISTS "sale"`), strings.Index(out, `DROP TABLE IF EXISTS "publisher"`))
	assert.Less(t, strings.Index(out, `CREATE TABLE "publisher"`), strings.Index(out, `CREATE TABLE "book"`))
	assert.Less(t, strings.Index(out, `CREATE TABLE "stock"`), strings.Index(out, `CREATE TABLE "sale"`))

	res = execute(t, "", "schema")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "serial PRIMARY KEY")
	assert.NotContains(t, res.stdout, "DROP TABLE")

	res = execute(t, "", "schema", "--dialect", "oracle")
	assert.ErrorIs(t, res.err, errUsage)
}

func TestSeedThenShops(t *testing.T) {
	db := sqliteURL(t)
	metricsFile := filepath.Join(t.TempDir(), "bookdist.prom")
	t.Setenv("BOOKDIST_METRICS_FILE", metricsFile)

	res := execute(t, "", "seed", "--db", db, "--seed", "7", "--json")
	require.NoError(t, res.err, res.stderr)

	var summary map[string]int
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summary))
	assert.Equal(t, 7, summary["seed"])
	assert.Equal(t, len(seed.DefaultCatalog().Publishers), summary["publishers"])
	assert.GreaterOrEqual(t, summary["stocks"], 10)

	res = execute(t, "", "shops", "--db", db, "-p", "1", "--json")
	require.NoError(t, res.err, res.stderr)

	var shops struct {
		Publisher string   `json:"publisher"`
		Shops     []string `json:"shops"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &shops))
	assert.Equal(t, seed.DefaultCatalog().Publishers[0], shops.Publisher)
	assert.NotNil(t, shops.Shops)

	exported, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(exported), `bookdist_runs_total{command="shops",status="ok"} 1`)
}

func TestShopsCommand_Errors(t *testing.T) {
	db := sqliteURL(t)

	res := execute(t, "", "shops", "--db", db, "-p", "99")
	assert.ErrorIs(t, res.err, errUsage)
	assert.Contains(t, res.err.Error(), "between 1 and")

	res = execute(t, "", "shops", "--db", db, "-p", "1")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "not seeded")

	res = execute(t, "", "shops", "--db", db)
	assert.Error(t, res.err, "--publisher is required")
}

func TestRunCommand_Prompt(t *testing.T) {
	res := execute(t, "first\n0\n2\n", "run", "--db", sqliteURL(t), "--seed", "1")
	require.NoError(t, res.err, res.stderr)

	out := res.stdout
	assert.Contains(t, out, "Incorrect input. Try again...")
	assert.Contains(t, out, "Publisher ID must be between 1 and")
	want := "Books of the publisher '" + seed.DefaultCatalog().Publishers[1] + "' are sold in shops:"
	assert.Contains(t, out, want)
}

func TestRunCommand_FixedPublisher(t *testing.T) {
	db := sqliteURL(t)

	res := execute(t, "", "run", "--db", db, "--seed", "3", "-p", "1", "--json")
	require.NoError(t, res.err, res.stderr)

	res = execute(t, "", "run", "--db", db, "-p", "0")
	assert.ErrorIs(t, res.err, errUsage)
}

func TestRunCommand_NoInput(t *testing.T) {
	db := sqliteURL(t)

	res := execute(t, "", "run", "--db", db, "--seed", "3")
	require.Error(t, res.err)

	// The failed run committed nothing.
	res = execute(t, "", "shops", "--db", db, "-p", "1")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "not seeded")
}
