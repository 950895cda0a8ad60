package pkg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePositive(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"0.011", 0.011, true},
		{"0,011", 0.011, true},
		{" 10 000,50 ", 10000.5, true},
		{"92", 92, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"1,2,3", 0, false},
		{"1e400", 0, false},
		{"1e-400", 0, false},
		{strings.Repeat("9", 400), 0, false},
		{"0." + strings.Repeat("0", 400) + "1", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePositive(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidNumber)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"20", 20, true},
		{"кофе 3,50", 3.5, true},
		{"такси 1 200 и чай 5", 1200, true},
		{"25. за обед", 25, true},
		{"обед", 0, false},
		{"0", 0, false},
		{"0.00 ничего", 0, false},
		{"такси " + strings.Repeat("9", 400), 0, false},
		{"0." + strings.Repeat("0", 400) + "1 евро", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ExtractAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$90.00", FormatMoney(90, "USD"))
	assert.Equal(t, "$1,234.50", FormatMoney(1234.5, "USD"))
	assert.Equal(t, "$1,818.18", FormatMoney(20/0.011, "USD"))
	assert.Equal(t, "12.34 XXY", FormatMoney(12.34, "XXY"))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0.011000", FormatRate(0.011))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.00m", FormatDuration(2*time.Minute))
	assert.Equal(t, "3.00h", FormatDuration(3*time.Hour))
}
