// Package catalog builds immutable price catalogs from raw feed records.
package catalog

import (
	"math"

	"github.com/kjannette/trahn-swap/internal/models"
)

// Catalog maps each symbol to a single retained price record. A Catalog is
// never mutated after Ingest returns; refreshing the prices builds a new one.
type Catalog struct {
	version uint64
	order   []string
	entries map[string]models.PriceRecord
}

// Ingest scans records in input order. A later record for a symbol replaces
// any earlier one, so the retained entry is the last occurrence in the
// sequence, not the highest price or the newest timestamp. Records with an
// empty symbol or a negative or non-finite price are dropped.
func Ingest(records []models.PriceRecord) *Catalog {
	return IngestVersion(records, 0)
}

// IngestVersion is Ingest with an explicit snapshot version.
func IngestVersion(records []models.PriceRecord, version uint64) *Catalog {
	c := &Catalog{
		version: version,
		entries: make(map[string]models.PriceRecord, len(records)),
	}
	for _, r := range records {
		if !valid(r) {
			continue
		}
		if _, seen := c.entries[r.Symbol]; !seen {
			c.order = append(c.order, r.Symbol)
		}
		c.entries[r.Symbol] = r
	}
	return c
}

func valid(r models.PriceRecord) bool {
	if r.Symbol == "" {
		return false
	}
	if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) || r.Price < 0 {
		return false
	}
	return true
}

// Lookup returns the price for symbol. ok is false when no quote exists;
// absence is never reported as a zero price.
func (c *Catalog) Lookup(symbol string) (price float64, ok bool) {
	if c == nil {
		return 0, false
	}
	r, ok := c.entries[symbol]
	return r.Price, ok
}

func (c *Catalog) Get(symbol string) (models.PriceRecord, bool) {
	if c == nil {
		return models.PriceRecord{}, false
	}
	r, ok := c.entries[symbol]
	return r, ok
}

// Symbols lists symbols in the order they were first seen in the feed.
func (c *Catalog) Symbols() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Records returns the retained records in first-seen symbol order.
func (c *Catalog) Records() []models.PriceRecord {
	if c == nil {
		return nil
	}
	out := make([]models.PriceRecord, 0, len(c.order))
	for _, s := range c.order {
		out = append(out, c.entries[s])
	}
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Version identifies the snapshot. Zero means the catalog was built outside
// a store.
func (c *Catalog) Version() uint64 {
	if c == nil {
		return 0
	}
	return c.version
}
