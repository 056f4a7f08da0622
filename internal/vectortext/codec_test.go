package vectortext

import (
	"testing"

	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "[]", Encode(nil))
	assert.Equal(t, "[]", Encode([]float32{}))
	assert.Equal(t, "[0.1,0.2,0.3]", Encode([]float32{0.1, 0.2, 0.3}))
	assert.Equal(t, "[1,-2,0]", Encode([]float32{1, -2, 0}))
}

func TestDecode(t *testing.T) {
	t.Run("empty forms", func(t *testing.T) {
		for _, input := range []string{"", "  ", "[]", "[ ]"} {
			vector, err := Decode(input)
			require.NoError(t, err, "input %q", input)
			assert.Empty(t, vector)
		}
	})

	t.Run("parses components", func(t *testing.T) {
		vector, err := Decode("[0.5, -1.25, 3]")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, -1.25, 3}, vector)
	})

	t.Run("malformed component is a validation error", func(t *testing.T) {
		_, err := Decode("[0.1,oops,0.3]")
		require.ErrorIs(t, err, domain.ErrMalformedVectorText)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	})
}

func TestRoundTrip(t *testing.T) {
	vectors := [][]float32{
		{},
		{0},
		{0.1, 0.2, 0.3},
		{-1.5, 2.25, -3.125, 4.0625},
		{1e-7, 1e7},
	}

	for _, v := range vectors {
		decoded, err := Decode(Encode(v))
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("", 3))
	assert.NoError(t, Validate("[]", 3))
	assert.NoError(t, Validate("[1,2,3]", 3))
	assert.ErrorIs(t, Validate("[1,2]", 3), domain.ErrWrongEmbeddingDimension)
	assert.ErrorIs(t, Validate("[a,b]", 3), domain.ErrMalformedVectorText)
}
