package service

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"log"
	"math/rand"
	"strings"
)

// DefaultEmbeddingDimension matches the vector column width in the store.
// Changing it requires re-embedding the whole corpus.
const DefaultEmbeddingDimension = 1024

// EmbeddingClient defines the interface for generating embeddings via an
// external model. It may be absent; absence and runtime failure are treated
// the same by the Embedder.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Embedder maps text to a fixed-dimension vector. The preferred path
// delegates to an EmbeddingClient; on any failure it falls back to a
// deterministic pseudo-random embedding so the rest of the pipeline keeps
// working in degraded mode.
type Embedder struct {
	client    EmbeddingClient
	dimension int
}

// NewEmbedder creates an Embedder. client may be nil when no embedding
// capability is configured.
func NewEmbedder(client EmbeddingClient, dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultEmbeddingDimension
	}
	if client == nil {
		log.Println("embedding client not configured; embeddings will use deterministic fallback")
	}
	return &Embedder{client: client, dimension: dimension}
}

// Dimension returns the fixed embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns a vector of length Dimension() for non-blank text. Blank
// input yields an empty vector without invoking the fallback.
func (e *Embedder) Embed(ctx context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" {
		return []float32{}
	}

	if e.client != nil {
		embedding, err := e.client.GenerateEmbedding(ctx, text)
		if err == nil && len(embedding) == e.dimension {
			return embedding
		}
		if err != nil {
			log.Printf("embedding generation failed, using deterministic fallback: %v", err)
		} else {
			log.Printf("embedding has wrong dimension (%d, want %d), using deterministic fallback", len(embedding), e.dimension)
		}
	}

	return e.fallbackEmbedding(text)
}

// fallbackEmbedding derives a reproducible vector from the text alone:
// the first 8 bytes of the SHA-256 digest seed a PRNG that draws Dimension()
// uniform values in [0,1). Identical text always yields an identical vector;
// the values carry no semantic meaning.
func (e *Embedder) fallbackEmbedding(text string) []float32 {
	digest := sha256.Sum256([]byte(text))
	seed := binary.BigEndian.Uint64(digest[:8])

	rng := rand.New(rand.NewSource(int64(seed)))
	embedding := make([]float32, e.dimension)
	for i := range embedding {
		embedding[i] = rng.Float32()
	}
	return embedding
}
