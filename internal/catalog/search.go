package catalog

import (
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kjannette/trahn-swap/internal/models"
)

// Search returns the records whose symbol contains term, ignoring case.
// Catalog listing order is preserved. An empty term matches everything.
func Search(c *Catalog, term string) []models.PriceRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	records := c.Records()
	if term == "" {
		return records
	}
	out := make([]models.PriceRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Symbol), term) {
			out = append(out, r)
		}
	}
	return out
}

// Searcher memoizes Search results per catalog version and term. Catalogs
// without a version are searched directly. Returned slices are shared and
// must not be modified.
type Searcher struct {
	cache *gocache.Cache
}

func NewSearcher(ttl time.Duration) *Searcher {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Searcher{cache: gocache.New(ttl, 2*ttl)}
}

func (s *Searcher) Search(c *Catalog, term string) []models.PriceRecord {
	if c.Version() == 0 {
		return Search(c, term)
	}
	key := strconv.FormatUint(c.Version(), 10) + "|" + strings.ToLower(strings.TrimSpace(term))
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.PriceRecord)
	}
	res := Search(c, term)
	s.cache.SetDefault(key, res)
	return res
}

// Listings resolves icons for the given records.
func Listings(records []models.PriceRecord, iconTemplate string) []models.TokenListing {
	out := make([]models.TokenListing, len(records))
	for i, r := range records {
		out[i] = models.TokenListing{
			Symbol:  r.Symbol,
			Price:   r.Price,
			AsOf:    r.AsOf,
			IconURL: IconURL(iconTemplate, r.Symbol),
		}
	}
	return out
}
