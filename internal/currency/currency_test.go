package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		country string
		want    string
		ok      bool
	}{
		{"exact russian", "Россия", "RUB", true},
		{"exact long name", "Соединенные Штаты Америки", "USD", true},
		{"iso code", "JP", "JPY", true},
		{"trimmed", "  Germany \n", "EUR", true},
		{"case insensitive latin", "japan", "JPY", true},
		{"case insensitive cyrillic", "великобритания", "GBP", true},
		{"input inside key", "Соединенные", "USD", true},
		{"key inside input", "Польша, Краков", "PLN", true},
		{"first match wins", "South", "KRW", true},
		{"unknown", "Атлантида", "", false},
		{"unknown latin", "Xyzzy", "", false},
		{"empty", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.country)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverMatchesResolve(t *testing.T) {
	var r Resolver
	code, ok := r.Resolve("Турция")
	assert.True(t, ok)
	assert.Equal(t, "TRY", code)
}

func TestTableCodesAreISO(t *testing.T) {
	codes := Codes()
	assert.NotEmpty(t, codes)
	for _, code := range codes {
		assert.True(t, Known(code), "unknown currency code %s", code)
	}
}

func TestCodesUniqueAndOrdered(t *testing.T) {
	codes := Codes()
	assert.Equal(t, []string{"RUB", "USD", "EUR", "GBP"}, codes[:4])

	seen := map[string]bool{}
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("usd"))
	assert.False(t, Known("XXY"))
}
