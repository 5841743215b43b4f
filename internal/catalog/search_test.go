package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kjannette/trahn-swap/internal/models"
)

func symbolsOf(records []models.PriceRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Symbol
	}
	return out
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	c := Ingest([]models.PriceRecord{
		rec("bNEO", 7), rec("ETH", 1645), rec("NEO", 8), rec("USDC", 1), rec("wstETH", 1872),
	})

	assert.Equal(t, []string{"bNEO", "NEO"}, symbolsOf(Search(c, "neo")))
	assert.Equal(t, []string{"ETH", "wstETH"}, symbolsOf(Search(c, " Eth ")))
	assert.Empty(t, Search(c, "doge"))
	assert.Len(t, Search(c, ""), 5)
}

func TestSearcher_MemoizesPerVersion(t *testing.T) {
	s := NewSearcher(time.Minute)

	v1 := IngestVersion([]models.PriceRecord{rec("ETH", 1), rec("USDC", 1)}, 1)
	v2 := IngestVersion([]models.PriceRecord{rec("ETH", 1), rec("WETH", 1)}, 2)

	assert.Equal(t, []string{"ETH"}, symbolsOf(s.Search(v1, "eth")))
	assert.Equal(t, []string{"ETH"}, symbolsOf(s.Search(v1, "ETH")))
	assert.Equal(t, []string{"ETH", "WETH"}, symbolsOf(s.Search(v2, "eth")))
}

func TestSearcher_UnversionedCatalogsBypassCache(t *testing.T) {
	s := NewSearcher(0)
	a := Ingest([]models.PriceRecord{rec("ETH", 1)})
	b := Ingest([]models.PriceRecord{rec("WETH", 1)})

	assert.Equal(t, []string{"ETH"}, symbolsOf(s.Search(a, "eth")))
	assert.Equal(t, []string{"WETH"}, symbolsOf(s.Search(b, "eth")))
}

func TestIconURL(t *testing.T) {
	assert.Equal(t,
		"https://raw.githubusercontent.com/Switcheo/token-icons/main/tokens/ETH.svg",
		IconURL("", "ETH"))
	assert.Equal(t, "https://cdn.example.com/OSMO.png", IconURL("https://cdn.example.com/%s.png", "OSMO"))
	assert.Equal(t, IconURL("", "ATOM"), IconURL("no-placeholder", "ATOM"))
}

func TestListings(t *testing.T) {
	ls := Listings([]models.PriceRecord{rec("ETH", 3000)}, "https://x/%s.svg")
	if assert.Len(t, ls, 1) {
		assert.Equal(t, "ETH", ls[0].Symbol)
		assert.Equal(t, 3000.0, ls[0].Price)
		assert.Equal(t, "https://x/ETH.svg", ls[0].IconURL)
	}
}
