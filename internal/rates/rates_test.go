package rates

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsable(t *testing.T) {
	assert.True(t, Usable(0.011))
	assert.False(t, Usable(0))
	assert.False(t, Usable(-1))
	assert.False(t, Usable(math.NaN()))
	assert.False(t, Usable(math.Inf(1)))
}

func TestUnavailableProvider(t *testing.T) {
	var p Provider = Unavailable{}

	_, err := p.FetchRate(context.Background(), "RUB", "USD")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = p.Convert(context.Background(), 10, "RUB", "USD")
	assert.ErrorIs(t, err, ErrUnavailable)
}
