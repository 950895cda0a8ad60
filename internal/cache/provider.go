// Package cache кеширует курсы валют поверх любого rates.Provider.
package cache

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"travel-wallet/internal/rates"
)

// CachedProvider отдает свежий курс из кеша, иначе идет к источнику.
// Если источник недоступен, FetchRate возвращает последний известный курс.
type CachedProvider struct {
	next   rates.Provider
	cache  *RatesCache
	logger *logrus.Logger
}

// NewCachedProvider оборачивает провайдер кешем
func NewCachedProvider(next rates.Provider, cache *RatesCache, logger *logrus.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		cache:  cache,
		logger: logger,
	}
}

func (p *CachedProvider) FetchRate(ctx context.Context, from, to string) (float64, error) {
	if rate, ok := p.cache.GetRate(from, to); ok {
		p.logger.Debugf("Using cached exchange rate: %s -> %s = %.8f", from, to, rate)
		return rate, nil
	}

	rate, err := p.next.FetchRate(ctx, from, to)
	if err == nil && rates.Usable(rate) {
		p.cache.SetRate(from, to, rate)
		return rate, nil
	}

	if stale, updatedAt, ok := p.cache.GetStale(from, to); ok {
		p.logger.Warnf("Rate source failed for %s -> %s, using rate from %s: %v",
			from, to, updatedAt.Format("2006-01-02 15:04"), err)
		return stale, nil
	}

	if err == nil {
		err = fmt.Errorf("%w: unusable rate %v", rates.ErrUnavailable, rate)
	}
	return 0, err
}

// Convert всегда обращается к источнику и запоминает полученный курс.
// Устаревший курс для пересчета не используется: при отказе источника
// вызывающий считает сумму по курсу своей поездки.
func (p *CachedProvider) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	converted, err := p.next.Convert(ctx, amount, from, to)
	if err != nil {
		return 0, err
	}
	if !rates.Usable(converted) {
		return 0, fmt.Errorf("%w: unusable amount %v", rates.ErrUnavailable, converted)
	}

	if rates.Usable(amount) {
		p.cache.SetRate(from, to, converted/amount)
	}
	return converted, nil
}
