// Package rates описывает источник курсов валют.
package rates

import (
	"context"
	"errors"
	"math"
)

// ErrUnavailable возвращается, когда курс получить не удалось.
// Любая сетевая ошибка, таймаут или непригодный ответ приводятся к нему.
var ErrUnavailable = errors.New("exchange rate unavailable")

// Provider источник курсов
type Provider interface {
	// FetchRate возвращает количество единиц to за 1 единицу from
	FetchRate(ctx context.Context, from, to string) (float64, error)
	// Convert возвращает сумму amount в валюте to
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

// Usable проверяет, что значение можно использовать как курс или сумму
func Usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Unavailable провайдер, который никогда не отдает курс
type Unavailable struct{}

func (Unavailable) FetchRate(context.Context, string, string) (float64, error) {
	return 0, ErrUnavailable
}

func (Unavailable) Convert(context.Context, float64, string, string) (float64, error) {
	return 0, ErrUnavailable
}
