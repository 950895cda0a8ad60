package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-wallet/internal/logger"
	"travel-wallet/internal/rates"
)

type fakeProvider struct {
	rate     float64
	err      error
	fetches  int
	converts int
}

func (f *fakeProvider) FetchRate(ctx context.Context, from, to string) (float64, error) {
	f.fetches++
	if f.err != nil {
		return 0, f.err
	}
	return f.rate, nil
}

func (f *fakeProvider) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	f.converts++
	if f.err != nil {
		return 0, f.err
	}
	return amount * f.rate, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newCache(ttl time.Duration) (*RatesCache, *clock) {
	c := NewRatesCache(ttl)
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clk.now
	return c, clk
}

func TestRatesCacheTTL(t *testing.T) {
	c, clk := newCache(time.Minute)

	_, ok := c.GetRate("RUB", "USD")
	assert.False(t, ok)

	c.SetRate("RUB", "USD", 0.011)
	rate, ok := c.GetRate("RUB", "USD")
	require.True(t, ok)
	assert.Equal(t, 0.011, rate)

	_, ok = c.GetRate("USD", "RUB")
	assert.False(t, ok, "pair direction matters")

	clk.t = clk.t.Add(2 * time.Minute)
	_, ok = c.GetRate("RUB", "USD")
	assert.False(t, ok)

	stale, updatedAt, ok := c.GetStale("RUB", "USD")
	require.True(t, ok)
	assert.Equal(t, 0.011, stale)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), updatedAt)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCachedProviderFetchRate(t *testing.T) {
	c, clk := newCache(time.Minute)
	src := &fakeProvider{rate: 0.011}
	p := NewCachedProvider(src, c, logger.Discard())
	ctx := context.Background()

	rate, err := p.FetchRate(ctx, "RUB", "USD")
	require.NoError(t, err)
	assert.Equal(t, 0.011, rate)

	_, err = p.FetchRate(ctx, "RUB", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1, src.fetches, "second call served from cache")

	clk.t = clk.t.Add(time.Hour)
	src.rate = 0.012
	rate, err = p.FetchRate(ctx, "RUB", "USD")
	require.NoError(t, err)
	assert.Equal(t, 0.012, rate)
	assert.Equal(t, 2, src.fetches)
}

func TestCachedProviderFallsBackToStale(t *testing.T) {
	c, clk := newCache(time.Minute)
	src := &fakeProvider{rate: 0.011}
	p := NewCachedProvider(src, c, logger.Discard())
	ctx := context.Background()

	_, err := p.FetchRate(ctx, "RUB", "USD")
	require.NoError(t, err)

	clk.t = clk.t.Add(time.Hour)
	src.err = rates.ErrUnavailable

	rate, err := p.FetchRate(ctx, "RUB", "USD")
	require.NoError(t, err)
	assert.Equal(t, 0.011, rate)

	_, err = p.Convert(ctx, 100, "RUB", "USD")
	assert.ErrorIs(t, err, rates.ErrUnavailable, "conversion falls back to the trip rate, not to a stale market rate")
}

func TestCachedProviderWithoutHistory(t *testing.T) {
	c, _ := newCache(time.Minute)
	p := NewCachedProvider(&fakeProvider{err: rates.ErrUnavailable}, c, logger.Discard())

	_, err := p.FetchRate(context.Background(), "RUB", "USD")
	assert.ErrorIs(t, err, rates.ErrUnavailable)

	_, err = p.Convert(context.Background(), 10, "RUB", "USD")
	assert.ErrorIs(t, err, rates.ErrUnavailable)
}

func TestCachedProviderRejectsUnusableRate(t *testing.T) {
	c, _ := newCache(time.Minute)
	p := NewCachedProvider(&fakeProvider{rate: 0}, c, logger.Discard())

	_, err := p.FetchRate(context.Background(), "RUB", "USD")
	assert.ErrorIs(t, err, rates.ErrUnavailable)
	assert.Equal(t, 0, c.Len())
}

func TestConvertRecordsImpliedRate(t *testing.T) {
	c, _ := newCache(time.Minute)
	src := &fakeProvider{rate: 2}
	p := NewCachedProvider(src, c, logger.Discard())

	converted, err := p.Convert(context.Background(), 5, "EUR", "USD")
	require.NoError(t, err)
	assert.Equal(t, 10.0, converted)

	rate, ok := c.GetRate("EUR", "USD")
	require.True(t, ok)
	assert.Equal(t, 2.0, rate)
}
