package swap

import (
	"sync"
	"time"

	"github.com/kjannette/trahn-swap/internal/catalog"
	"github.com/kjannette/trahn-swap/internal/debounce"
	"github.com/kjannette/trahn-swap/internal/models"
)

type Side int

const (
	SideSource Side = iota
	SideDestination
)

// Picker is the token selection list. Typing filters the list after the
// input settles; selecting a token writes it to the session.
type Picker struct {
	session  *Session
	catalog  func() *catalog.Catalog
	searcher *catalog.Searcher
	deb      *debounce.Debouncer
	onResult func([]models.PriceRecord)

	mu      sync.Mutex
	open    bool
	gen     uint64
	side    Side
	term    string
	results []models.PriceRecord
}

// NewPicker builds a picker over the catalog returned by current. onResult,
// if set, is called with every new result list.
func NewPicker(session *Session, current func() *catalog.Catalog, wait time.Duration,
	onResult func([]models.PriceRecord)) *Picker {
	return &Picker{
		session:  session,
		catalog:  current,
		searcher: catalog.NewSearcher(time.Minute),
		deb:      debounce.New(wait),
		onResult: onResult,
	}
}

func (p *Picker) Open(side Side) {
	p.mu.Lock()
	p.open = true
	p.gen++
	p.side = side
	p.term = ""
	p.mu.Unlock()
	p.publish(catalog.Search(p.catalog(), ""))
}

// Type records the search term and schedules filtering.
func (p *Picker) Type(term string) {
	p.mu.Lock()
	p.term = term
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	p.deb.Call(func() {
		p.publishSearch(gen, term)
	})
}

// publishSearch publishes the results for term unless the picker has been
// typed into again, reopened or closed since gen was taken.
func (p *Picker) publishSearch(gen uint64, term string) {
	results := p.searcher.Search(p.catalog(), term)
	p.mu.Lock()
	if gen != p.gen || !p.open {
		p.mu.Unlock()
		return
	}
	p.results = results
	cb := p.onResult
	p.mu.Unlock()
	if cb != nil {
		cb(results)
	}
}

// Select writes symbol to the side the picker was opened for and closes it.
func (p *Picker) Select(symbol string) {
	p.mu.Lock()
	side := p.side
	p.mu.Unlock()

	if side == SideSource {
		p.session.SetSource(symbol)
	} else {
		p.session.SetDestination(symbol)
	}
	p.Close()
}

// Close drops any pending search and resets the list.
func (p *Picker) Close() {
	p.deb.Cancel()
	p.mu.Lock()
	p.open = false
	p.gen++
	p.term = ""
	p.mu.Unlock()
	p.publish(catalog.Search(p.catalog(), ""))
}

func (p *Picker) publish(results []models.PriceRecord) {
	p.mu.Lock()
	p.results = results
	cb := p.onResult
	p.mu.Unlock()
	if cb != nil {
		cb(results)
	}
}

func (p *Picker) Results() []models.PriceRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

func (p *Picker) Term() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.term
}

func (p *Picker) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}
