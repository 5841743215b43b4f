package rate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/trahn-swap/internal/catalog"
	"github.com/kjannette/trahn-swap/internal/models"
)

func TestMemo_MatchesConvert(t *testing.T) {
	m, err := NewMemo(100, time.Minute)
	require.NoError(t, err)
	defer m.Close()

	c := catalog.IngestVersion([]models.PriceRecord{
		{Symbol: "BTC", Price: 60000},
		{Symbol: "ETH", Price: 3000},
	}, 3)

	for i := 0; i < 3; i++ {
		got, err := m.Convert(c, "ETH", "BTC", 2)
		require.NoError(t, err)
		assert.Equal(t, 0.1, got)
	}

	_, err = m.Convert(c, "ETH", "DOGE", 2)
	assert.ErrorIs(t, err, ErrMissingQuote)
}

func TestMemo_KeyIncludesCatalogVersion(t *testing.T) {
	m, err := NewMemo(100, 0)
	require.NoError(t, err)
	defer m.Close()

	v1 := catalog.IngestVersion([]models.PriceRecord{{Symbol: "ETH", Price: 3000}, {Symbol: "USDC", Price: 1}}, 1)
	v2 := catalog.IngestVersion([]models.PriceRecord{{Symbol: "ETH", Price: 3100}, {Symbol: "USDC", Price: 1}}, 2)

	got, err := m.Convert(v1, "ETH", "USDC", 1)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, got)

	got, err = m.Convert(v2, "ETH", "USDC", 1)
	require.NoError(t, err)
	assert.Equal(t, 3100.0, got)
}

func TestMemoKey(t *testing.T) {
	c := catalog.IngestVersion(nil, 9)
	assert.Equal(t, "9|3:ETH|3:BTC|2.5", memoKey(c, "ETH", "BTC", 2.5))

	// Symbols containing the separator must not collide.
	assert.NotEqual(t, memoKey(c, "A|B", "C", 1), memoKey(c, "A", "B|C", 1))
	assert.NotEqual(t, memoKey(c, "A|3:B", "C", 1), memoKey(c, "A", "3:B|1:C", 1))
}

func TestMemo_SeparatorInSymbolsDoesNotShareResults(t *testing.T) {
	m, err := NewMemo(100, time.Minute)
	require.NoError(t, err)
	defer m.Close()

	c := catalog.IngestVersion([]models.PriceRecord{
		{Symbol: "A|B", Price: 10},
		{Symbol: "C", Price: 1},
		{Symbol: "A", Price: 1},
		{Symbol: "B|C", Price: 4},
	}, 1)

	got, err := m.Convert(c, "A|B", "C", 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)
	m.c.Wait()

	got, err = m.Convert(c, "A", "B|C", 1)
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)
}
