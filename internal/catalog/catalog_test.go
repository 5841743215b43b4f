package catalog

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/trahn-swap/internal/models"
)

func rec(symbol string, price float64) models.PriceRecord {
	return models.PriceRecord{Symbol: symbol, Price: price}
}

func TestIngest_LastOccurrenceWins(t *testing.T) {
	t0 := time.Date(2023, 8, 29, 7, 10, 40, 0, time.UTC)
	records := []models.PriceRecord{
		{Symbol: "ETH", AsOf: t0.Add(time.Minute), Price: 1645.93},
		{Symbol: "BTC", AsOf: t0, Price: 26002.82},
		{Symbol: "ETH", AsOf: t0, Price: 1600.00},
	}

	c := Ingest(records)

	price, ok := c.Lookup("ETH")
	require.True(t, ok)
	// last in sequence, even though its timestamp is older
	assert.Equal(t, 1600.00, price)
	assert.Equal(t, 2, c.Len())
}

func TestIngest_AtMostOneEntryPerSymbol(t *testing.T) {
	records := []models.PriceRecord{
		rec("USDC", 1), rec("USDC", 0.99), rec("USDC", 1.01), rec("ATOM", 7),
	}
	c := Ingest(records)

	assert.Equal(t, []string{"USDC", "ATOM"}, c.Symbols())
	assert.Len(t, c.Records(), 2)
	price, _ := c.Lookup("USDC")
	assert.Equal(t, 1.01, price)
}

func TestLookup_Absent(t *testing.T) {
	c := Ingest([]models.PriceRecord{rec("ETH", 3000)})
	price, ok := c.Lookup("BTC")
	assert.False(t, ok)
	assert.Zero(t, price)

	var nilCat *Catalog
	_, ok = nilCat.Lookup("ETH")
	assert.False(t, ok)
	assert.Zero(t, nilCat.Len())
}

func TestLookup_ZeroPriceIsPresent(t *testing.T) {
	c := Ingest([]models.PriceRecord{rec("DUST", 0)})
	price, ok := c.Lookup("DUST")
	assert.True(t, ok)
	assert.Zero(t, price)
}

func TestIngest_DropsInvalidRecords(t *testing.T) {
	c := Ingest([]models.PriceRecord{
		rec("", 1),
		rec("NEG", -1),
		rec("NAN", math.NaN()),
		rec("INF", math.Inf(1)),
		rec("OK", 2),
	})
	assert.Equal(t, []string{"OK"}, c.Symbols())
}

func TestIngest_InvalidLaterRecordDoesNotEraseEarlier(t *testing.T) {
	c := Ingest([]models.PriceRecord{rec("ETH", 3000), rec("ETH", -5)})
	price, ok := c.Lookup("ETH")
	require.True(t, ok)
	assert.Equal(t, 3000.0, price)
}

func TestIngest_DoesNotAliasInput(t *testing.T) {
	records := []models.PriceRecord{rec("ETH", 3000)}
	c := Ingest(records)
	records[0].Price = 1

	price, _ := c.Lookup("ETH")
	assert.Equal(t, 3000.0, price)

	syms := c.Symbols()
	syms[0] = "MUTATED"
	assert.Equal(t, []string{"ETH"}, c.Symbols())
}

func TestIngestVersion(t *testing.T) {
	c := IngestVersion(nil, 7)
	assert.Equal(t, uint64(7), c.Version())
	assert.Zero(t, c.Len())
	assert.Zero(t, Ingest(nil).Version())
}
