package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LadyAlena/sql-homeworks-6/internal/models"
	"github.com/LadyAlena/sql-homeworks-6/internal/report"
	"github.com/LadyAlena/sql-homeworks-6/internal/seed"
)

func TestPublisherShops(t *testing.T) {
	var buf bytes.Buffer
	PublisherShops(&buf, &report.PublisherShops{Publisher: "P1", Shops: []string{"S1", "S2"}})

	assert.Equal(t, "Books of the publisher 'P1' are sold in shops:\n - S1\n - S2\n", buf.String())
}

func TestPublisherShops_Empty(t *testing.T) {
	var buf bytes.Buffer
	PublisherShops(&buf, &report.PublisherShops{Publisher: "P2", Shops: []string{}})

	assert.Contains(t, buf.String(), "Books of the publisher 'P2' are sold in shops:\n")
	assert.NotContains(t, buf.String(), " - ")
}

func TestSeedSummary(t *testing.T) {
	var buf bytes.Buffer
	SeedSummary(&buf, &seed.Result{
		Publishers: make([]models.Publisher, 2),
		Stocks:     make([]models.Stock, 12),
	}, 42)

	out := buf.String()
	assert.Contains(t, out, "Seeded tables")
	assert.Contains(t, out, "stock")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "--seed 42")
}

func TestClearScreen_NotTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	ClearScreen(&buf)
	assert.Empty(t, buf.String())
}
