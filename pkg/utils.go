package pkg

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrInvalidNumber ввод не является положительным числом
var ErrInvalidNumber = errors.New("invalid number")

var firstNumber = regexp.MustCompile(`\d+\.?\d*`)

// positiveFloat переводит положительный decimal в float64.
// Значения, которые в float64 обнуляются или уходят в бесконечность, отвергаются.
func positiveFloat(d decimal.Decimal) (float64, bool) {
	if !d.IsPositive() {
		return 0, false
	}
	v, _ := d.Float64()
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// NormalizeCurrency приводит код валюты к верхнему регистру
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ParsePositive разбирает положительное десятичное число.
// Допускается запятая вместо точки и пробелы между разрядами.
func ParsePositive(text string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return 0, ErrInvalidNumber
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	v, ok := positiveFloat(d)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a positive finite number", ErrInvalidNumber, text)
	}
	return v, nil
}

// ExtractAmount находит первое число в свободном тексте
func ExtractAmount(text string) (float64, bool) {
	s := strings.ReplaceAll(text, ",", ".")
	s = strings.Join(strings.Fields(s), "")

	match := firstNumber.FindString(s)
	if match == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(strings.TrimSuffix(match, "."))
	if err != nil {
		return 0, false
	}
	return positiveFloat(d)
}

// FormatMoney форматирует сумму по правилам валюты: два знака и разделители разрядов
func FormatMoney(amount float64, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}

	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// FormatRate форматирует курс обмена для вывода
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.6f", rate)
}

// FormatDuration форматирует duration в удобочитаемый формат
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.2fm", d.Minutes())
	}
	return fmt.Sprintf("%.2fh", d.Hours())
}
