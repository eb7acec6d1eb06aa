package deposit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

func TestToUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     string
	}{
		{"whole amount", "100", 6, "100000000"},
		{"fractional amount", "1.5", 6, "1500000"},
		{"full precision", "0.000001", 6, "1"},
		{"trailing zeros beyond precision are fine", "1.5000000", 6, "1500000"},
		{"leading dot", ".5", 6, "500000"},
		{"eighteen decimals", "2.5", 18, "2500000000000000000"},
		{"zero", "0", 6, "0"},
		{"whitespace tolerated", " 42 ", 2, "4200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, err := ToUnits(tt.amount, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, units.String())
		})
	}

	t.Run("sub-unit precision fails rather than rounds", func(t *testing.T) {
		_, err := ToUnits("0.0000001", 6)
		assert.ErrorIs(t, err, domain.ErrFractionalUnits)
	})

	t.Run("empty amount", func(t *testing.T) {
		_, err := ToUnits("", 6)
		assert.Error(t, err)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := ToUnits("-1", 6)
		assert.Error(t, err)
	})

	t.Run("malformed amount", func(t *testing.T) {
		_, err := ToUnits("1.2.3", 6)
		assert.Error(t, err)
	})

	t.Run("non-numeric amount", func(t *testing.T) {
		_, err := ToUnits("abc", 6)
		assert.Error(t, err)
	})
}
