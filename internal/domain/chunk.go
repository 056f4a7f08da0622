package domain

import (
	"strings"
	"time"
)

// SourceType identifies where a chunk's text came from.
type SourceType string

const (
	SourceTypeWord     SourceType = "word"
	SourceTypePDF      SourceType = "pdf"
	SourceTypeMarkdown SourceType = "markdown"
	SourceTypeExternal SourceType = "external"
)

// IsValid checks if the source type is one of the known values.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeWord, SourceTypePDF, SourceTypeMarkdown, SourceTypeExternal:
		return true
	}
	return false
}

// SourceTypeFromFilename derives a SourceType from a filename extension.
// Unsupported extensions return an error; the caller decides how to record it.
func SourceTypeFromFilename(filename string) (SourceType, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".docx"), strings.HasSuffix(lower, ".doc"):
		return SourceTypeWord, nil
	case strings.HasSuffix(lower, ".pdf"):
		return SourceTypePDF, nil
	case strings.HasSuffix(lower, ".md"):
		return SourceTypeMarkdown, nil
	}
	return "", NewDomainError(ErrCodeValidation, "unsupported file type: "+filename)
}

// Chunk is the atomic unit of stored, searchable knowledge. The ID is
// assigned by the store; ParentID weakly references the ImportRecord that
// produced the chunk, if any.
type Chunk struct {
	ID           int64
	Title        string
	Content      string
	ChunkContent string
	ChunkIndex   int
	ParentID     *int64
	Embedding    []float32
	Metadata     *string
	SourceType   SourceType
	SourceURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate enforces the persisted-chunk invariants: non-empty chunk content
// and, when an embedding is present, exactly the configured dimension.
func (c *Chunk) Validate(dimension int) error {
	if c.ChunkContent == "" {
		return ErrEmptyChunkContent
	}
	if len(c.Embedding) != 0 && len(c.Embedding) != dimension {
		return ErrWrongEmbeddingDimension
	}
	if c.SourceType != "" && !c.SourceType.IsValid() {
		return ErrInvalidSourceType
	}
	return nil
}
