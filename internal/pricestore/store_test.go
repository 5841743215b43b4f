package pricestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kjannette/trahn-swap/internal/catalog"
	"github.com/kjannette/trahn-swap/internal/models"
)

type stubFetcher struct {
	records []models.PriceRecord
	err     error
	calls   int
}

func (f *stubFetcher) FetchPrices(_ context.Context) ([]models.PriceRecord, error) {
	f.calls++
	return f.records, f.err
}

func TestStore_StartsEmpty(t *testing.T) {
	s := New(nil, nil)
	require.NotNil(t, s.Current())
	assert.Zero(t, s.Current().Len())
	assert.NoError(t, s.Refresh(context.Background()))
}

func TestStore_RefreshInstallsSnapshot(t *testing.T) {
	f := &stubFetcher{records: []models.PriceRecord{
		{Symbol: "ETH", Price: 1600},
		{Symbol: "ETH", Price: 1645.93},
		{Symbol: "USDC", Price: 1},
	}}
	s := New(f, zap.NewNop())

	require.NoError(t, s.Refresh(context.Background()))
	cat := s.Current()
	assert.Equal(t, uint64(1), cat.Version())
	price, ok := cat.Lookup("ETH")
	require.True(t, ok)
	assert.Equal(t, 1645.93, price)

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, uint64(2), s.Current().Version())
	// earlier snapshot is untouched
	assert.Equal(t, uint64(1), cat.Version())
}

func TestStore_FailedRefreshKeepsPrevious(t *testing.T) {
	f := &stubFetcher{records: []models.PriceRecord{{Symbol: "ETH", Price: 3000}}}
	s := New(f, zap.NewNop())
	require.NoError(t, s.Refresh(context.Background()))
	before := s.Current()

	f.err = errors.New("connection refused")
	err := s.Refresh(context.Background())
	require.Error(t, err)

	assert.Same(t, before, s.Current())
	st := s.Status()
	assert.Equal(t, uint64(1), st.Version)
	assert.Equal(t, "connection refused", st.LastError)

	f.err = nil
	require.NoError(t, s.Refresh(context.Background()))
	assert.Empty(t, s.Status().LastError)
}

func TestStore_FailedFirstRefreshLeavesEmptyCatalog(t *testing.T) {
	s := New(&stubFetcher{err: errors.New("dns")}, nil)
	assert.Error(t, s.Refresh(context.Background()))
	assert.Zero(t, s.Current().Len())
}

func TestStore_SubscribeReceivesSnapshots(t *testing.T) {
	s := New(nil, nil)
	ch := make(chan *catalog.Catalog, 1)
	sub := s.Subscribe(ch)
	defer sub.Unsubscribe()

	cat := s.Replace([]models.PriceRecord{{Symbol: "ATOM", Price: 7}})

	select {
	case got := <-ch:
		assert.Same(t, cat, got)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestStore_ConcurrentReplaceDeliversInVersionOrder(t *testing.T) {
	s := New(nil, nil)
	const n = 20
	ch := make(chan *catalog.Catalog, n)
	sub := s.Subscribe(ch)
	defer sub.Unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(price float64) {
			defer wg.Done()
			s.Replace([]models.PriceRecord{{Symbol: "ETH", Price: price}})
		}(float64(3000 + i))
	}
	wg.Wait()

	var last uint64
	for i := 0; i < n; i++ {
		select {
		case got := <-ch:
			require.Greater(t, got.Version(), last, "snapshot %d delivered out of order", i)
			last = got.Version()
		case <-time.After(time.Second):
			t.Fatalf("only %d of %d snapshots delivered", i, n)
		}
	}
	assert.Equal(t, s.Current().Version(), last)
}
