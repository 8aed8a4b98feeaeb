package refquote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYahooSymbol(t *testing.T) {
	cases := map[string]string{
		"KUCOIN:BTCUSDT":   "BTC-USD",
		"BINANCE:ETHFDUSD": "ETH-USD",
		"solusdc":          "SOL-USD",
		"KUCOIN:ADA-USDT":  "ADA-USD",
		"BTC/USD":          "BTC-USD",
	}
	for in, want := range cases {
		got, ok := YahooSymbol(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"KUCOIN:ETHBTC", "USDT", ""} {
		_, ok := YahooSymbol(in)
		assert.False(t, ok, in)
	}
}

type fakeService struct {
	calls  map[string]int
	quotes map[string]Quote
	err    error
}

func (f *fakeService) Get(_ context.Context, symbol string) (Quote, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[symbol]++
	if f.err != nil {
		return Quote{}, f.err
	}
	return f.quotes[symbol], nil
}

func TestCacheServiceSharesYahooSymbol(t *testing.T) {
	next := &fakeService{quotes: map[string]Quote{
		"KUCOIN:BTCUSDT": {Symbol: "BTC-USD", Price: "50,000.00"},
	}}
	c := NewCacheService(next, time.Minute, 8)
	ctx := context.Background()

	q, err := c.Get(ctx, "KUCOIN:BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "50,000.00", q.Price)

	// same Yahoo symbol from another exchange is served from cache
	q, err = c.Get(ctx, "BINANCE:BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "50,000.00", q.Price)
	assert.Equal(t, 1, next.calls["KUCOIN:BTCUSDT"])
	assert.Zero(t, next.calls["BINANCE:BTCUSDT"])
}

func TestCacheServiceExpiry(t *testing.T) {
	next := &fakeService{quotes: map[string]Quote{"KUCOIN:BTCUSDT": {Price: "1"}}}
	c := NewCacheService(next, time.Minute, 8)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.Get(ctx, "KUCOIN:BTCUSDT")
	require.NoError(t, err)
	now = now.Add(30 * time.Second)
	_, err = c.Get(ctx, "KUCOIN:BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls["KUCOIN:BTCUSDT"])

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "KUCOIN:BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls["KUCOIN:BTCUSDT"])
}

func TestCacheServiceEvictsOldest(t *testing.T) {
	next := &fakeService{}
	c := NewCacheService(next, time.Hour, 2)
	ctx := context.Background()

	for _, s := range []string{"BTCUSDT", "ETHUSDT", "BTCUSDT", "SOLUSDT", "ETHUSDT"} {
		_, err := c.Get(ctx, s)
		require.NoError(t, err)
	}
	// BTC was touched before SOL arrived, so ETH was evicted and refetched
	assert.Equal(t, 1, next.calls["BTCUSDT"])
	assert.Equal(t, 2, next.calls["ETHUSDT"])
	assert.Equal(t, 1, next.calls["SOLUSDT"])
	assert.Len(t, c.items, 2)
}

func TestCacheServiceDoesNotCacheErrors(t *testing.T) {
	next := &fakeService{err: errors.New("yahoo down")}
	c := NewCacheService(next, time.Hour, 2)
	ctx := context.Background()

	_, err := c.Get(ctx, "BTCUSDT")
	require.Error(t, err)
	_, err = c.Get(ctx, "BTCUSDT")
	require.Error(t, err)
	assert.Equal(t, 2, next.calls["BTCUSDT"])
}

func TestYFServiceUnmapped(t *testing.T) {
	s := NewYFService(time.Second)
	_, err := s.Get(context.Background(), "KUCOIN:ETHBTC")
	assert.ErrorIs(t, err, ErrUnmapped)
}
