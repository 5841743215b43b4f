// Package pricestore keeps the current price catalog snapshot.
package pricestore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"

	"github.com/kjannette/trahn-swap/internal/catalog"
	"github.com/kjannette/trahn-swap/internal/models"
)

type Fetcher interface {
	FetchPrices(ctx context.Context) ([]models.PriceRecord, error)
}

// Store holds the latest catalog. Each refresh builds a new snapshot and
// swaps it in whole; readers never see a partially built catalog. A failed
// refresh leaves the previous snapshot in place.
type Store struct {
	fetcher Fetcher
	logger  *zap.Logger

	current atomic.Pointer[catalog.Catalog]
	feed    event.Feed
	sendMu  sync.Mutex

	mu          sync.Mutex
	version     uint64
	lastRefresh time.Time
	lastErr     error
}

func New(fetcher Fetcher, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{fetcher: fetcher, logger: logger}
	s.current.Store(catalog.Ingest(nil))
	return s
}

// Current returns the latest snapshot. It is never nil.
func (s *Store) Current() *catalog.Catalog {
	return s.current.Load()
}

// Subscribe delivers every new snapshot to ch. Publishing waits for each
// subscriber to receive, so ch should be buffered or drained promptly.
func (s *Store) Subscribe(ch chan<- *catalog.Catalog) event.Subscription {
	return s.feed.Subscribe(ch)
}

// Refresh fetches the feed and installs a new snapshot.
func (s *Store) Refresh(ctx context.Context) error {
	if s.fetcher == nil {
		return nil
	}
	records, err := s.fetcher.FetchPrices(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Error("failed to load token prices, keeping previous catalog",
			zap.Uint64("version", s.Current().Version()),
			zap.Error(err),
		)
		return err
	}
	s.Replace(records)
	return nil
}

// Replace installs a snapshot built from records. Subscribers receive
// snapshots in version order.
func (s *Store) Replace(records []models.PriceRecord) *catalog.Catalog {
	// sendMu is taken before mu is released so publishes cannot overtake
	// each other.
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	s.version++
	cat := catalog.IngestVersion(records, s.version)
	s.current.Store(cat)
	s.lastRefresh = time.Now()
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.Info("price catalog refreshed",
		zap.Uint64("version", cat.Version()),
		zap.Int("records", len(records)),
		zap.Int("symbols", cat.Len()),
	)
	s.feed.Send(cat)
	return cat
}

type Status struct {
	Version     uint64    `json:"version"`
	Symbols     int       `json:"symbols"`
	LastRefresh time.Time `json:"lastRefresh"`
	LastError   string    `json:"lastError,omitempty"`
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat := s.Current()
	st := Status{
		Version:     cat.Version(),
		Symbols:     cat.Len(),
		LastRefresh: s.lastRefresh,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
