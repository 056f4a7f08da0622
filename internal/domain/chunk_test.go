package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceTypeFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     SourceType
		wantErr  bool
	}{
		{"notes.md", SourceTypeMarkdown, false},
		{"REPORT.PDF", SourceTypePDF, false},
		{"legacy.doc", SourceTypeWord, false},
		{"modern.docx", SourceTypeWord, false},
		{"archive.tar.gz", "", true},
		{"plain.txt", "", true},
		{"no-extension", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := SourceTypeFromFilename(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				var domainErr *DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, ErrCodeValidation, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChunkValidate(t *testing.T) {
	t.Run("rejects empty chunk content", func(t *testing.T) {
		c := &Chunk{Title: "t", Content: "c"}
		assert.ErrorIs(t, c.Validate(4), ErrEmptyChunkContent)
	})

	t.Run("rejects wrong embedding dimension", func(t *testing.T) {
		c := &Chunk{ChunkContent: "hello", Embedding: []float32{0.1, 0.2}}
		assert.ErrorIs(t, c.Validate(4), ErrWrongEmbeddingDimension)
	})

	t.Run("accepts empty embedding", func(t *testing.T) {
		c := &Chunk{ChunkContent: "hello", SourceType: SourceTypeMarkdown}
		assert.NoError(t, c.Validate(4))
	})

	t.Run("accepts matching embedding dimension", func(t *testing.T) {
		c := &Chunk{ChunkContent: "hello", Embedding: []float32{1, 2, 3, 4}}
		assert.NoError(t, c.Validate(4))
	})

	t.Run("rejects unknown source type", func(t *testing.T) {
		c := &Chunk{ChunkContent: "hello", SourceType: "rss"}
		assert.ErrorIs(t, c.Validate(4), ErrInvalidSourceType)
	})
}
