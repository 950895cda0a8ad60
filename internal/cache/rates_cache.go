package cache

import (
	"sync"
	"time"
)

type cachedRate struct {
	rate      float64
	updatedAt time.Time
}

// RatesCache кеш курсов по парам валют
type RatesCache struct {
	rates map[string]cachedRate
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// NewRatesCache создает новый кеш
func NewRatesCache(ttl time.Duration) *RatesCache {
	return &RatesCache{
		rates: make(map[string]cachedRate),
		ttl:   ttl,
		now:   time.Now,
	}
}

func pairKey(from, to string) string {
	return from + "_" + to
}

// SetRate сохраняет курс пары
func (c *RatesCache) SetRate(from, to string, rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rates[pairKey(from, to)] = cachedRate{rate: rate, updatedAt: c.now()}
}

// GetRate возвращает курс, если он не старше TTL
func (c *RatesCache) GetRate(from, to string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.rates[pairKey(from, to)]
	if !ok || c.now().Sub(entry.updatedAt) > c.ttl {
		return 0, false
	}
	return entry.rate, true
}

// GetStale возвращает последний известный курс независимо от TTL
func (c *RatesCache) GetStale(from, to string) (float64, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.rates[pairKey(from, to)]
	return entry.rate, entry.updatedAt, ok
}

// Clear очищает кеш
func (c *RatesCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rates = make(map[string]cachedRate)
}

// Len количество пар в кеше, включая устаревшие
func (c *RatesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.rates)
}
