package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCentavos(t *testing.T) {
	tests := []struct {
		name     string
		pesos    float64
		expected int64
	}{
		{"WholeAmount", 1500.00, 150_000},
		{"HalfCentRoundsUp", 0.005, 1},
		{"Fractional", 123.45, 12_345},
		{"Negative", -20.50, -2_050},
		{"Zero", 0, 0},
		{"FloatNoise", 0.1 + 0.2, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToCentavos(tc.pesos)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	t.Run("RejectsNaN", func(t *testing.T) {
		_, err := ToCentavos(math.NaN())
		assert.ErrorIs(t, err, AmountRangeError{})
	})

	t.Run("RejectsInfinity", func(t *testing.T) {
		_, err := ToCentavos(math.Inf(1))
		assert.ErrorIs(t, err, AmountRangeError{})
	})

	t.Run("RejectsOutOfRange", func(t *testing.T) {
		_, err := ToCentavos(1e18)
		assert.ErrorIs(t, err, AmountRangeError{})
	})
}

func TestToPesos(t *testing.T) {
	assert.Equal(t, 1500.00, ToPesos(150_000))
	assert.Equal(t, -20.50, ToPesos(-2_050))
	assert.Equal(t, 0.01, ToPesos(1))
}
