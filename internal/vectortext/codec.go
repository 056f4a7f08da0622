// Package vectortext converts between numeric vectors and the canonical
// bracketed text form used for storage and query parameters, e.g.
// "[0.1,0.2,0.3]". The same form is what pgvector accepts for a CAST to its
// vector type.
package vectortext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cloo-solutions/corpusai/internal/domain"
)

// Encode renders a vector as bracketed comma-separated text. An empty vector
// encodes to "[]".
func Encode(vector []float32) string {
	if len(vector) == 0 {
		return "[]"
	}

	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Decode parses bracketed comma-separated text back into a vector. "[]" and
// blank input yield an empty vector; any unparseable component is a
// validation error.
func Decode(text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "[]" {
		return []float32{}, nil
	}

	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	if strings.TrimSpace(trimmed) == "" {
		return []float32{}, nil
	}

	parts := strings.Split(trimmed, ",")
	vector := make([]float32, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", domain.ErrMalformedVectorText, i, err)
		}
		vector[i] = float32(v)
	}
	return vector, nil
}

// Validate checks that text is a well-formed vector of the given dimension.
// Empty text (no embedding) is accepted.
func Validate(text string, dimension int) error {
	vector, err := Decode(text)
	if err != nil {
		return err
	}
	if len(vector) != 0 && len(vector) != dimension {
		return domain.ErrWrongEmbeddingDimension
	}
	return nil
}
