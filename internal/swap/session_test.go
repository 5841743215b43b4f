package swap

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
	"github.com/kjannette/trahn-swap/internal/rate"
)

// gatedExecutor blocks every swap until release is closed.
type gatedExecutor struct {
	release chan struct{}
	err     error

	mu     sync.Mutex
	orders []models.SwapOrder
}

func newGatedExecutor() *gatedExecutor {
	return &gatedExecutor{release: make(chan struct{})}
}

func (g *gatedExecutor) Execute(ctx context.Context, id string, order models.SwapOrder) (models.SwapReceipt, error) {
	g.mu.Lock()
	g.orders = append(g.orders, order)
	g.mu.Unlock()
	select {
	case <-g.release:
	case <-ctx.Done():
		return models.SwapReceipt{}, ctx.Err()
	}
	if g.err != nil {
		return models.SwapReceipt{}, g.err
	}
	return models.SwapReceipt{
		ID:           id,
		Order:        order,
		BalanceAfter: map[string]float64{order.Source: 0, order.Destination: order.DestinationAmount},
	}, nil
}

func testCatalog() *catalog.Catalog {
	return catalog.Ingest([]models.PriceRecord{
		{Symbol: "BTC", Price: 60000},
		{Symbol: "ETH", Price: 3000},
		{Symbol: "USDC", Price: 1},
		{Symbol: "DUST", Price: 0},
	})
}

func newTestSession(exec Executor) *Session {
	return NewSession(testCatalog(), map[string]float64{"ETH": 10}, exec, zap.NewNop())
}

func TestSession_ConvertsAsInputsChange(t *testing.T) {
	s := newTestSession(nil)
	s.SetSource("ETH")
	s.SetAmount("2")
	assert.Empty(t, s.State().DestinationAmount)

	s.SetDestination("BTC")
	assert.Equal(t, "0.1", s.State().DestinationAmount)

	s.SetAmount("4")
	assert.Equal(t, "0.2", s.State().DestinationAmount)
}

func TestSession_SourceChangeRecomputes(t *testing.T) {
	s := newTestSession(nil)
	s.SetSource("ETH")
	s.SetDestination("USDC")
	s.SetAmount("1")
	require.Equal(t, "3000", s.State().DestinationAmount)

	s.SetSource("BTC")
	assert.Equal(t, "60000", s.State().DestinationAmount)
}

func TestSession_CatalogChangeRecomputes(t *testing.T) {
	s := newTestSession(nil)
	s.SetSource("ETH")
	s.SetDestination("USDC")
	s.SetAmount("1")
	require.Equal(t, "3000", s.State().DestinationAmount)

	s.SetCatalog(catalog.Ingest([]models.PriceRecord{{Symbol: "ETH", Price: 3100}, {Symbol: "USDC", Price: 1}}))
	assert.Equal(t, "3100", s.State().DestinationAmount)
}

func TestSession_InsufficientBalanceFlagClears(t *testing.T) {
	s := newTestSession(nil)
	s.SetSource("ETH")
	s.SetDestination("USDC")
	s.SetAmount("20")

	assert.Equal(t, "Insufficient balance", s.State().ErrorMessage)
	assert.False(t, s.CanSubmit())

	s.SetAmount("5")
	assert.Empty(t, s.State().ErrorMessage)
	assert.True(t, s.CanSubmit())

	s.SetAmount("20")
	require.ErrorIs(t, s.Err(), ErrInsufficientBalance)
	s.SetBalances(map[string]float64{"ETH": 50})
	assert.NoError(t, s.Err())
}

func TestSession_SubmitValidationErrorIsNotSticky(t *testing.T) {
	s := newTestSession(newGatedExecutor())
	s.SetSource("ETH")

	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, ErrNoTokenSelected)
	assert.Equal(t, "Select token to swap", s.State().ErrorMessage)

	s.SetDestination("USDC")
	assert.Empty(t, s.State().ErrorMessage)

	_, err = s.Submit(context.Background())
	require.ErrorIs(t, err, ErrNoAmount)
	assert.Equal(t, "Select value to swap", s.State().ErrorMessage)

	s.SetAmount("1")
	assert.Empty(t, s.State().ErrorMessage)
}

func TestSession_RateErrorsBlockSubmit(t *testing.T) {
	s := newTestSession(newGatedExecutor())
	s.SetSource("ETH")
	s.SetDestination("DUST")
	s.SetAmount("1")

	assert.ErrorIs(t, s.Err(), rate.ErrDivisionByZero)
	assert.Equal(t, "Destination token has no price", s.State().ErrorMessage)
	assert.False(t, s.CanSubmit())

	s.SetDestination("DOGE")
	assert.ErrorIs(t, s.Err(), rate.ErrMissingQuote)
	assert.Empty(t, s.State().DestinationAmount)
}

func TestSession_SwapDirection(t *testing.T) {
	s := newTestSession(nil)
	s.SetSource("ETH")
	s.SetDestination("BTC")
	s.SwapDirection()

	st := s.State()
	assert.Equal(t, "BTC", st.SourceSymbol)
	assert.Equal(t, "ETH", st.DestinationSymbol)
}

func TestSession_SelectPercent(t *testing.T) {
	s := newTestSession(nil)
	s.SetSource("ETH")
	s.SetDestination("USDC")

	s.SelectPercent(25)
	assert.Equal(t, "2.5", s.State().SourceAmount)
	assert.Equal(t, "7500", s.State().DestinationAmount)

	s.SelectMax()
	assert.Equal(t, "10", s.State().SourceAmount)

	s.SetSource("BTC")
	s.SelectPercent(50)
	assert.Equal(t, "0", s.State().SourceAmount)
}

func TestSession_SubmitRunsInBackground(t *testing.T) {
	exec := newGatedExecutor()
	s := newTestSession(exec)

	done := make(chan models.SwapReceipt, 1)
	s.OnComplete(func(r models.SwapReceipt, err error) {
		assert.NoError(t, err)
		done <- r
	})

	s.SetSource("ETH")
	s.SetDestination("BTC")
	s.SetAmount("2")
	require.True(t, s.CanSubmit())

	id, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.True(t, s.Busy())
	assert.False(t, s.CanSubmit())

	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(exec.release)
	select {
	case r := <-done:
		assert.Equal(t, id, r.ID)
		assert.Equal(t, 0.1, r.Order.DestinationAmount)
	case <-time.After(2 * time.Second):
		t.Fatal("swap did not complete")
	}

	assert.Eventually(t, func() bool { return !s.Busy() }, time.Second, 5*time.Millisecond)
	last, lastErr := s.LastResult()
	require.NoError(t, lastErr)
	require.NotNil(t, last)
	// balances were replaced by the executor's view, so 2 ETH now exceeds the held 0
	assert.Equal(t, 0.0, s.State().Balances["ETH"])
	assert.Equal(t, "Insufficient balance", s.State().ErrorMessage)
}

func TestSession_SubmitFailureIsRecorded(t *testing.T) {
	exec := newGatedExecutor()
	exec.err = errors.New("venue down")
	close(exec.release)
	s := newTestSession(exec)

	s.SetSource("ETH")
	s.SetDestination("USDC")
	s.SetAmount("1")
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return !s.Busy() }, time.Second, 5*time.Millisecond)
	_, lastErr := s.LastResult()
	assert.EqualError(t, lastErr, "venue down")
	assert.Equal(t, 10.0, s.State().Balances["ETH"])
}

func TestSession_StateIsACopy(t *testing.T) {
	s := newTestSession(nil)
	st := s.State()
	st.Balances["ETH"] = 0
	assert.Equal(t, 10.0, s.State().Balances["ETH"])
}

func TestSession_IgnoresOlderCatalog(t *testing.T) {
	s := newTestSession(nil)
	s.SetSource("ETH")
	s.SetDestination("USDC")
	s.SetAmount("1")

	v1 := catalog.IngestVersion([]models.PriceRecord{{Symbol: "ETH", Price: 2900}, {Symbol: "USDC", Price: 1}}, 1)
	v2 := catalog.IngestVersion([]models.PriceRecord{{Symbol: "ETH", Price: 3100}, {Symbol: "USDC", Price: 1}}, 2)

	s.SetCatalog(v2)
	s.SetCatalog(v1)
	assert.Equal(t, uint64(2), s.CatalogVersion())
	assert.Equal(t, "3100", s.State().DestinationAmount)

	// Unversioned catalogs are always taken.
	s.SetCatalog(catalog.Ingest([]models.PriceRecord{{Symbol: "ETH", Price: 3000}, {Symbol: "USDC", Price: 1}}))
	assert.Equal(t, "3000", s.State().DestinationAmount)
}
