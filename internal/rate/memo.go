package rate

import (
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/kjannette/trahn-swap/internal/catalog"
)

// Memo caches successful conversions keyed by the whole dependency set.
// Only versioned catalogs are cached. Writes are buffered, so a value set
// may not be visible to the very next Get.
type Memo struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func NewMemo(maxEntries int64, ttl time.Duration) (*Memo, error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Memo{c: c, ttl: ttl}, nil
}

// memoKey length-prefixes the symbols; they are untrusted and may contain
// the separator.
func memoKey(c *catalog.Catalog, source, destination string, amount float64) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(c.Version(), 10))
	for _, sym := range [2]string{source, destination} {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(len(sym)))
		b.WriteByte(':')
		b.WriteString(sym)
	}
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(amount, 'g', -1, 64))
	return b.String()
}

// Convert behaves like the package-level Convert.
func (m *Memo) Convert(c *catalog.Catalog, source, destination string, amount float64) (float64, error) {
	if c.Version() == 0 {
		return Convert(c, source, destination, amount)
	}
	key := memoKey(c, source, destination, amount)
	if v, ok := m.c.Get(key); ok {
		return v.(float64), nil
	}
	out, err := Convert(c, source, destination, amount)
	if err != nil {
		return 0, err
	}
	m.c.SetWithTTL(key, out, 1, m.ttl)
	return out, nil
}

func (m *Memo) Close() { m.c.Close() }
