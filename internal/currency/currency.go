// Package currency сопоставляет название страны с кодом валюты ISO 4217.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
)

type entry struct {
	name string
	code string
}

// table упорядочена: при частичном совпадении побеждает первая подходящая запись.
// Русские названия идут первыми внутри каждой страны.
var table = []entry{
	{"Россия", "RUB"}, {"Russia", "RUB"}, {"RU", "RUB"}, {"РФ", "RUB"},

	{"США", "USD"}, {"Соединенные Штаты", "USD"}, {"Соединенные Штаты Америки", "USD"},
	{"USA", "USD"}, {"United States", "USD"}, {"US", "USD"},

	{"Евросоюз", "EUR"}, {"ЕС", "EUR"}, {"EU", "EUR"}, {"Europe", "EUR"},
	{"Германия", "EUR"}, {"Germany", "EUR"}, {"DE", "EUR"},
	{"Франция", "EUR"}, {"France", "EUR"}, {"FR", "EUR"},
	{"Италия", "EUR"}, {"Italy", "EUR"}, {"IT", "EUR"},
	{"Испания", "EUR"}, {"Spain", "EUR"}, {"ES", "EUR"},
	{"Нидерланды", "EUR"}, {"Netherlands", "EUR"}, {"NL", "EUR"},
	{"Бельгия", "EUR"}, {"Belgium", "EUR"}, {"BE", "EUR"},
	{"Австрия", "EUR"}, {"Austria", "EUR"}, {"AT", "EUR"},
	{"Португалия", "EUR"}, {"Portugal", "EUR"}, {"PT", "EUR"},
	{"Греция", "EUR"}, {"Greece", "EUR"}, {"GR", "EUR"},
	{"Финляндия", "EUR"}, {"Finland", "EUR"}, {"FI", "EUR"},
	{"Ирландия", "EUR"}, {"Ireland", "EUR"}, {"IE", "EUR"},

	{"Великобритания", "GBP"}, {"Англия", "GBP"}, {"UK", "GBP"},
	{"United Kingdom", "GBP"}, {"GB", "GBP"},

	{"Китай", "CNY"}, {"КНР", "CNY"}, {"China", "CNY"}, {"CN", "CNY"},
	{"Япония", "JPY"}, {"Japan", "JPY"}, {"JP", "JPY"},
	{"Канада", "CAD"}, {"Canada", "CAD"}, {"CA", "CAD"},
	{"Австралия", "AUD"}, {"Australia", "AUD"}, {"AU", "AUD"},
	{"Швейцария", "CHF"}, {"Switzerland", "CHF"}, {"CH", "CHF"},
	{"Турция", "TRY"}, {"Turkey", "TRY"}, {"TR", "TRY"},
	{"Индия", "INR"}, {"India", "INR"}, {"IN", "INR"},
	{"Бразилия", "BRL"}, {"Brazil", "BRL"}, {"BR", "BRL"},
	{"Мексика", "MXN"}, {"Mexico", "MXN"}, {"MX", "MXN"},
	{"Южная Корея", "KRW"}, {"Корея", "KRW"}, {"South Korea", "KRW"}, {"KR", "KRW"},
	{"Сингапур", "SGD"}, {"Singapore", "SGD"}, {"SG", "SGD"},
	{"Таиланд", "THB"}, {"Thailand", "THB"}, {"TH", "THB"},
	{"ОАЭ", "AED"}, {"Объединенные Арабские Эмираты", "AED"},
	{"UAE", "AED"}, {"United Arab Emirates", "AED"}, {"AE", "AED"},
	{"Саудовская Аравия", "SAR"}, {"Saudi Arabia", "SAR"}, {"SA", "SAR"},
	{"Норвегия", "NOK"}, {"Norway", "NOK"}, {"NO", "NOK"},
	{"Швеция", "SEK"}, {"Sweden", "SEK"}, {"SE", "SEK"},
	{"Дания", "DKK"}, {"Denmark", "DKK"}, {"DK", "DKK"},
	{"Польша", "PLN"}, {"Poland", "PLN"}, {"PL", "PLN"},
	{"Чехия", "CZK"}, {"Czech Republic", "CZK"}, {"CZ", "CZK"},
	{"Венгрия", "HUF"}, {"Hungary", "HUF"}, {"HU", "HUF"},
	{"Израиль", "ILS"}, {"Israel", "ILS"}, {"IL", "ILS"},
	{"ЮАР", "ZAR"}, {"Южно-Африканская Республика", "ZAR"},
	{"South Africa", "ZAR"}, {"ZA", "ZAR"},
	{"Новая Зеландия", "NZD"}, {"New Zealand", "NZD"}, {"NZ", "NZD"},
}

// Resolve возвращает код валюты для страны.
// Порядок: точное совпадение, без учета регистра, вхождение в любую сторону.
func Resolve(country string) (string, bool) {
	country = strings.TrimSpace(country)
	if country == "" {
		return "", false
	}

	for _, e := range table {
		if e.name == country {
			return e.code, true
		}
	}

	lower := strings.ToLower(country)
	for _, e := range table {
		if strings.ToLower(e.name) == lower {
			return e.code, true
		}
	}

	for _, e := range table {
		name := strings.ToLower(e.name)
		if strings.Contains(name, lower) || strings.Contains(lower, name) {
			return e.code, true
		}
	}

	return "", false
}

// Resolver адаптирует Resolve к интерфейсу поиска валюты
type Resolver struct{}

func (Resolver) Resolve(country string) (string, bool) {
	return Resolve(country)
}

// Known проверяет, что код есть в справочнике ISO 4217
func Known(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// Codes возвращает уникальные коды валют из таблицы в порядке появления
func Codes() []string {
	seen := make(map[string]bool, len(table))
	codes := make([]string, 0, 32)
	for _, e := range table {
		if !seen[e.code] {
			seen[e.code] = true
			codes = append(codes, e.code)
		}
	}
	return codes
}
